// Package services implements the HTTP clients cineflix talks to.
//
// # Movie Catalog
//
// [TMDBClient] implements [MovieService] against The Movie Database v3 API. It authenticates
// with the v4 read access token as an OAuth2 bearer token when one is configured, and with the
// api_key query parameter otherwise. Every request waits on a token-bucket limiter first.
//
// Catalog results convert to [models.Movie] with [ToMovie]. Converted movies carry only the
// image path fragments TMDB returns; resolving them to URLs is left to [TMDBClient.ImageURL]
// and [TMDBClient.BackdropURL], which fall back to placeholder images for empty paths.
//
// # cineflix API
//
// [APIClient] talks to a running `cineflix serve` instance, for scripts and smoke tests.
//
// # Error Handling
//
// Clients use sentinel errors from the shared package:
//   - [shared.ErrMovieNotFound] : TMDB returned 404
//   - [shared.ErrAPIRequest] : any other non-2xx response or transport failure
//   - [shared.ErrMissingConfig] : no TMDB credentials configured
package services

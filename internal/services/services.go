// package services defines the movie catalog interface and its HTTP clients
package services

import (
	"context"
)

// MovieService is a remote movie catalog. [TMDBClient] is the only implementation.
type MovieService interface {
	// Popular lists the catalog's currently popular movies.
	Popular(ctx context.Context, page int) (*MoviePage, error)

	// Trending lists movies trending this week.
	Trending(ctx context.Context, page int) (*MoviePage, error)

	// TopRated lists the highest rated movies.
	TopRated(ctx context.Context, page int) (*MoviePage, error)

	// Search finds movies by title.
	Search(ctx context.Context, query string, page int) (*MoviePage, error)

	// Details fetches one movie with its videos, credits, reviews, similar titles and recommendations.
	Details(ctx context.Context, id int) (*MovieDetails, error)

	// Genres lists the catalog's movie genres.
	Genres(ctx context.Context) ([]Genre, error)

	// Discover lists movies matching the given filters.
	Discover(ctx context.Context, opts DiscoverOptions) (*MoviePage, error)

	// Videos lists trailers, teasers and clips for a movie.
	Videos(ctx context.Context, id int) ([]Video, error)

	// Reviews lists user reviews for a movie.
	Reviews(ctx context.Context, id, page int) (*ReviewPage, error)

	// Similar lists movies similar to id.
	Similar(ctx context.Context, id, page int) (*MoviePage, error)

	// Recommendations lists movies recommended for viewers of id.
	Recommendations(ctx context.Context, id, page int) (*MoviePage, error)

	// Name returns the name of the catalog (e.g., "TMDB")
	Name() string
}

// DiscoverOptions filters [MovieService.Discover]. Zero values are omitted.
type DiscoverOptions struct {
	Page      int
	SortBy    string // Defaults to popularity.desc
	GenreID   int
	Year      int
	MinRating float64
}

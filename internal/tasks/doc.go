// Package tasks runs long catalog operations against the movie service with real-time progress reporting.
//
// # Import
//
// [Engine.Import] resolves a list of movie references and saves them as favorites:
//
//   - A numeric reference is a TMDB id and is fetched with [services.MovieService.Details]
//   - Anything else is a title and takes the top [services.MovieService.Search] hit
//
// Lookups run on a bounded worker pool sharing one [rate.Limiter], so the catalog sees at most
// RateLimit requests per second no matter how many workers run. Resolved movies are saved in
// input order once every lookup has finished, so favorites keep the order of the import list.
// One failed reference never aborts the rest.
//
// # Progress Reporting
//
// Operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks

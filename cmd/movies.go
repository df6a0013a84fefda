package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/cineflix/internal/services"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/urfave/cli/v3"
)

type pageFetcher func(ctx context.Context, page int) (*services.MoviePage, error)

// MoviesPopular lists popular movies.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	return r.listMovies(ctx, cmd, "Popular", func(m services.MovieService) pageFetcher { return m.Popular })
}

// MoviesTrending lists movies trending this week.
func (r *Runner) MoviesTrending(ctx context.Context, cmd *cli.Command) error {
	return r.listMovies(ctx, cmd, "Trending", func(m services.MovieService) pageFetcher { return m.Trending })
}

// MoviesTopRated lists the highest rated movies.
func (r *Runner) MoviesTopRated(ctx context.Context, cmd *cli.Command) error {
	return r.listMovies(ctx, cmd, "Top Rated", func(m services.MovieService) pageFetcher { return m.TopRated })
}

// MoviesSearch finds movies by title.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	return r.listMovies(ctx, cmd, fmt.Sprintf("Results for %q", query), func(m services.MovieService) pageFetcher {
		return func(ctx context.Context, page int) (*services.MoviePage, error) {
			return m.Search(ctx, query, page)
		}
	})
}

// MoviesDiscover filters the catalog by genre, year and rating.
func (r *Runner) MoviesDiscover(ctx context.Context, cmd *cli.Command) error {
	opts := services.DiscoverOptions{
		SortBy:    cmd.String("sort"),
		GenreID:   cmd.Int("genre"),
		Year:      cmd.Int("year"),
		MinRating: cmd.Float("min-rating"),
	}

	return r.listMovies(ctx, cmd, "Discover", func(m services.MovieService) pageFetcher {
		return func(ctx context.Context, page int) (*services.MoviePage, error) {
			opts.Page = page
			return m.Discover(ctx, opts)
		}
	})
}

func (r *Runner) listMovies(ctx context.Context, cmd *cli.Command, title string, fetch func(services.MovieService) pageFetcher) error {
	movies, err := r.catalog()
	if err != nil {
		return err
	}

	page, err := fetch(movies)(ctx, cmd.Int("page"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s (page %d of %d)", title, page.Page, page.TotalPages))
	if len(page.Results) == 0 {
		return r.writePlain("No movies found.\n")
	}
	for i, m := range services.ToMovies(page) {
		m = m.Normalized()
		r.writePlain("%2d. %s%s  [%d]  %d%% match\n", i+1, m.Title, yearSuffix(m.Year), m.ID, m.Match)
	}
	return nil
}

// MoviesDetails prints one movie with its trailer, credits, reviews and recommendations.
func (r *Runner) MoviesDetails(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.catalog()
	if err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	d, err := movies.Details(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(d, true)
	}

	movie := services.DetailsToMovie(d).Normalized()
	r.writePlainHeader(movie.Title + yearSuffix(movie.Year))
	if d.Tagline != "" {
		r.writePlain("%s\n\n", d.Tagline)
	}

	facts := []string{fmt.Sprintf("%d%% match", movie.Match)}
	if movie.Duration != "" {
		facts = append(facts, movie.Duration)
	}
	if len(d.Genres) > 0 {
		names := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			names = append(names, g.Name)
		}
		facts = append(facts, strings.Join(names, ", "))
	}
	r.writePlain("%s\n", strings.Join(facts, " • "))

	if d.Overview != "" {
		r.writePlainln("%s", d.Overview)
	}
	if directors := d.Directors(); len(directors) > 0 {
		r.writePlain("\nDirected by: %s\n", strings.Join(directors, ", "))
	}
	if len(d.Credits.Cast) > 0 {
		cast := make([]string, 0, 5)
		for _, c := range d.Credits.Cast {
			if len(cast) == 5 {
				break
			}
			cast = append(cast, c.Name)
		}
		r.writePlain("Starring:    %s\n", strings.Join(cast, ", "))
	}
	if v, ok := d.Trailer(); ok {
		r.writePlain("Trailer:     %s\n", services.TrailerURL(v.Key))
	}
	if n := len(d.Reviews.Results); n > 0 {
		review := d.Reviews.Results[0]
		content := review.Content
		if len(content) > 240 {
			content = content[:240] + "…"
		}
		r.writePlain("\nReview by %s (%d total):\n  %s\n", review.Author, d.Reviews.TotalResults, content)
	}
	if recs := services.ToMovies(&d.Recommendations); len(recs) > 0 {
		r.writePlain("\nMore like this:\n")
		for i, m := range recs {
			if i == 5 {
				break
			}
			r.writePlain("  • %s%s  [%d]\n", m.Title, yearSuffix(m.ReleaseYear()), m.ID)
		}
	}
	return nil
}

// MoviesGenres lists the catalog's genres.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.catalog()
	if err != nil {
		return err
	}

	genres, err := movies.Genres(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}

	r.writePlainHeader(movies.Name() + " Genres")
	for _, g := range genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

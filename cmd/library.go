package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/cineflix/internal/formatter"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/tasks"
	"github.com/desertthunder/cineflix/internal/watching"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints the viewer's favorites in insertion order.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	favs := r.favorites.Favorites()
	if cmd.Bool("json") {
		return r.writeJSON(favs, true)
	}

	r.writePlainHeader(fmt.Sprintf("My List (%d)", len(favs)))
	if len(favs) == 0 {
		return r.writePlain("No favorites yet. Add one with 'cineflix favorites add <id|title>'.\n")
	}
	for i, f := range favs {
		r.writePlain("%2d. %s%s  [%d]\n", i+1, f.Title, yearSuffix(f.Year), f.ID)
		details := []string{fmt.Sprintf("%d%% match", f.Match)}
		if f.Duration != "" {
			details = append(details, f.Duration)
		}
		r.writePlain("    %s\n", strings.Join(details, " • "))
	}
	return nil
}

// FavoritesAdd resolves each argument against the catalog and saves the hits, or saves a
// single hand-described item when --title is given.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	args := cmd.Args().Slice()
	if title := cmd.String("title"); title != "" {
		if len(args) != 1 {
			return fmt.Errorf("%w: --title needs exactly one movie id", shared.ErrMissingArgument)
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		movie := models.Movie{ID: id, Title: title, Image: cmd.String("image"), Year: cmd.String("year")}
		if r.favorites.IsFavorite(id) {
			return r.writePlain("%s is already in My List\n", title)
		}
		r.favorites.Add(movie)
		return r.writePlain("✓ Added %s to My List\n", title)
	}

	if len(args) == 0 {
		return fmt.Errorf("%w: give at least one movie id or title", shared.ErrMissingArgument)
	}
	return r.runImport(ctx, args, tasks.ImportOpts{})
}

// FavoritesImport adds every movie listed in a file.
func (r *Runner) FavoritesImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a movie list is required", shared.ErrMissingArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open movie list: %w", err)
	}
	defer f.Close()

	refs, err := tasks.ParseRefs(f)
	if err != nil {
		return err
	}

	return r.runImport(ctx, refs, tasks.ImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
}

func (r *Runner) runImport(ctx context.Context, refs []string, opts tasks.ImportOpts) error {
	if _, err := r.catalog(); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, len(refs)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	run, err := r.engine.Import(ctx, progress, refs, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	for _, res := range run.Results {
		switch {
		case res.Error != nil:
			r.writePlain("✗ %s: %v\n", res.Ref, res.Error)
		case res.Skipped:
			r.writePlain("• %s already in My List\n", res.Movie.Title)
		default:
			r.writePlain("✓ %s%s\n", res.Movie.Title, yearSuffix(res.Movie.ReleaseYear()))
		}
	}
	return r.writePlainln("Imported %d, skipped %d, failed %d of %d", run.Imported, run.Skipped, run.Failed, run.Total)
}

// FavoritesRemove drops one favorite.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if !r.favorites.IsFavorite(id) {
		return r.writePlain("%d is not in My List\n", id)
	}
	r.favorites.Remove(id)
	return r.writePlain("✓ Removed %d from My List\n", id)
}

// FavoritesToggle adds a movie when absent and removes it otherwise.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	movie := models.Movie{ID: id, Title: cmd.String("title")}
	if !r.favorites.IsFavorite(id) && movie.Title == "" {
		resolved, err := r.resolve(ctx, id)
		if err != nil {
			return err
		}
		movie = *resolved
	}

	if r.favorites.Toggle(movie) {
		return r.writePlain("✓ Added %d to My List\n", id)
	}
	return r.writePlain("✓ Removed %d from My List\n", id)
}

// FavoritesClear removes every favorite.
func (r *Runner) FavoritesClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	n := r.favorites.Count()
	r.favorites.ClearAll()
	return r.writePlain("✓ Cleared %d favorites\n", n)
}

// FavoritesExport writes favorites and continue watching in the requested format.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	owner := ""
	if user, ok := r.session.GetUser(); ok {
		owner = user.Name
		if owner == "" {
			owner = user.Email
		}
	}
	lib := formatter.NewLibrary(owner, r.favorites.Favorites(), r.watching.Entries(), r.now())

	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	if format == formatter.FormatMarkdown || format == "md" {
		imageURL := ""
		if cmd.Bool("cover") && len(lib.Favorites) > 0 {
			imageURL = r.posterURL(lib.Favorites[0].ResolvedImage())
		}

		result, warning, err := formatter.WriteMarkdownExport(lib, output, imageURL, r.httpClient)
		if err != nil {
			return err
		}
		if warning != "" {
			r.logger.Warn(warning)
		}
		return r.writePlain("✓ Exported library to %s (%d files)\n", result.Directory, len(result.Files))
	}

	if output == "-" {
		data, err := formatter.Export(lib, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	path, err := formatter.WriteExport(lib, format, output)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Exported %d favorites and %d in progress to %s\n", len(lib.Favorites), len(lib.Watching), path)
}

// WatchingList prints in-progress movies, most recent first.
func (r *Runner) WatchingList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	entries := r.watching.Entries()
	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader(fmt.Sprintf("Continue Watching (%d)", len(entries)))
	if len(entries) == 0 {
		return r.writePlain("Nothing in progress.\n")
	}
	for i, e := range entries {
		r.writePlain("%2d. %s%s  [%d]\n", i+1, e.Title, yearSuffix(e.Year), e.ID)
		r.writePlain("    %s %s / %s (%.0f%%)\n", progressBar(e.Percent(), 20),
			shared.FormatDuration(int(e.Progress)), shared.FormatDuration(int(e.Duration)), e.Percent())
	}
	return nil
}

// WatchingPlay records playback progress, moving the movie to the front of the list.
func (r *Runner) WatchingPlay(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	progress, duration := cmd.Float("progress"), cmd.Float("duration")
	if progress < 0 || duration <= 0 {
		return fmt.Errorf("%w: progress must be >= 0 and duration > 0", shared.ErrInvalidArgument)
	}

	var movie models.Movie
	switch entry, ok := r.watching.Get(id); {
	case cmd.String("title") != "":
		movie = models.Movie{ID: id, Title: cmd.String("title")}
	case ok:
		movie = entryMovie(entry)
	default:
		resolved, err := r.resolve(ctx, id)
		if err != nil {
			return err
		}
		movie = *resolved
	}

	r.watching.Add(movie, progress, duration)
	return r.writePlain("✓ %s at %s / %s\n", movie.Title, shared.FormatDuration(int(progress)), shared.FormatDuration(int(duration)))
}

// WatchingProgress prints the saved position for one movie.
func (r *Runner) WatchingProgress(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	entry, ok := r.watching.Get(id)
	if !ok {
		return r.writePlain("%d has no saved progress\n", id)
	}
	return r.writePlain("%s: %s / %s (%.0f%%)\n", entry.Title,
		shared.FormatDuration(int(entry.Progress)), shared.FormatDuration(int(entry.Duration)), entry.Percent())
}

// WatchingRemove drops one movie from continue watching.
func (r *Runner) WatchingRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	r.watching.Remove(id)
	return r.writePlain("✓ Removed %d from Continue Watching\n", id)
}

// WatchingClear empties continue watching.
func (r *Runner) WatchingClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	n := r.watching.Count()
	r.watching.ClearAll()
	return r.writePlain("✓ Cleared %d in-progress movies\n", n)
}

// resolve fetches a movie from the catalog by id.
func (r *Runner) resolve(ctx context.Context, id int) (*models.Movie, error) {
	if _, err := r.catalog(); err != nil {
		return nil, fmt.Errorf("%w (or pass --title)", err)
	}
	return r.engine.Resolve(ctx, strconv.Itoa(id))
}

// posterURL expands a TMDB path fragment into a full image URL.
func (r *Runner) posterURL(image string) string {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	base := strings.TrimRight(r.config.TMDB.ImageBaseURL, "/")
	if base == "" {
		base = "https://image.tmdb.org/t/p"
	}
	return base + "/w500" + image
}

func entryMovie(e watching.Entry) models.Movie {
	return e.Movie
}

func parseID(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a movie id", shared.ErrInvalidArgument, s)
	}
	return id, nil
}

func yearSuffix(year string) string {
	if year == "" {
		return ""
	}
	return " (" + year + ")"
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

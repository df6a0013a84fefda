package tasks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/favorites"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/services"
	"github.com/desertthunder/cineflix/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 4.0
)

// ImportOpts configures [Engine.Import].
type ImportOpts struct {
	NumWorkers int     // Concurrent lookups (default: 4, max: 10)
	RateLimit  float64 // Catalog requests per second across all workers (default: 4)
}

// ImportResult is the outcome for one reference.
type ImportResult struct {
	Ref     string        // Reference as given
	Movie   *models.Movie // Resolved movie (nil on failure)
	Skipped bool          // Already a favorite
	Error   error         // Lookup failure
}

// ImportRunResult summarizes an import, with Results in input order.
type ImportRunResult struct {
	Total    int
	Imported int
	Skipped  int
	Failed   int
	Results  []ImportResult
}

type importJob struct {
	index int
	ref   string
}

// Engine runs catalog tasks against a [services.MovieService] and the favorites manager.
type Engine struct {
	movies    services.MovieService
	favorites *favorites.Manager
	logger    *log.Logger
}

// NewEngine creates an [Engine]. A nil logger discards output.
func NewEngine(movies services.MovieService, favs *favorites.Manager, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &Engine{movies: movies, favorites: favs, logger: logger}
}

// sendProgress sends an update without blocking on a slow or absent reader.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Import resolves refs concurrently and saves the hits as favorites in input order.
//
// A cancelled context stops outstanding lookups; their references are reported as failed
// and the movies resolved so far are still saved.
func (e *Engine) Import(ctx context.Context, progress chan<- ProgressUpdate, refs []string, opts ImportOpts) (*ImportRunResult, error) {
	if e.movies == nil {
		return nil, fmt.Errorf("%w: movie service not configured", shared.ErrServiceUnavailable)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no movies to import", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	total := len(refs)
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan importJob, total)
	results := make([]ImportResult, total)
	done := make(chan int, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.importWorker(ctx, &wg, limiter, jobs, results, done)
	}

	for i, ref := range refs {
		jobs <- importJob{index: i, ref: ref}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	e.sendProgress(progress, resolvingUpdate(total))

	completed := 0
	for i := range done {
		completed++
		if res := results[i]; res.Error != nil {
			e.sendProgress(progress, resolveFailedUpdate(completed, total, res.Ref, res.Error))
		} else {
			e.sendProgress(progress, resolvedUpdate(completed, total, res.Movie))
		}
	}

	run := &ImportRunResult{Total: total, Results: results}
	e.sendProgress(progress, savingUpdate(total, total))

	for i := range results {
		res := &results[i]
		switch {
		case res.Error != nil:
			run.Failed++
		case e.favorites.IsFavorite(res.Movie.ID):
			res.Skipped = true
			run.Skipped++
		default:
			e.favorites.Add(*res.Movie)
			run.Imported++
		}
	}

	e.logger.Info("import finished", "total", total, "imported", run.Imported, "skipped", run.Skipped, "failed", run.Failed)
	return run, nil
}

// importWorker resolves jobs, writing each outcome to its own slot in results.
func (e *Engine) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan importJob,
	results []ImportResult,
	done chan<- int,
) {
	defer wg.Done()

	for job := range jobs {
		res := ImportResult{Ref: job.ref}
		if err := limiter.Wait(ctx); err != nil {
			res.Error = fmt.Errorf("lookup cancelled: %w", err)
		} else {
			movie, err := e.Resolve(ctx, job.ref)
			res.Movie, res.Error = movie, err
		}
		results[job.index] = res
		done <- job.index
	}
}

// Resolve looks up a single reference: a numeric TMDB id, or a title taking the top search hit.
func (e *Engine) Resolve(ctx context.Context, ref string) (*models.Movie, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty movie reference", shared.ErrInvalidArgument)
	}

	if id, err := strconv.Atoi(ref); err == nil && id > 0 {
		details, err := e.movies.Details(ctx, id)
		if err != nil {
			return nil, err
		}
		movie := services.DetailsToMovie(details)
		return &movie, nil
	}

	page, err := e.movies.Search(ctx, ref, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, fmt.Errorf("%w: no results for %q", shared.ErrMovieNotFound, ref)
	}
	movie := services.ToMovie(page.Results[0])
	return &movie, nil
}

// ParseRefs reads one movie reference per line, skipping blank lines and # comments.
func ParseRefs(r io.Reader) ([]string, error) {
	var refs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movie list: %w", err)
	}
	return refs, nil
}

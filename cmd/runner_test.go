package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/desertthunder/cineflix/internal/accounts"
	"github.com/desertthunder/cineflix/internal/favorites"
	"github.com/desertthunder/cineflix/internal/server"
	"github.com/desertthunder/cineflix/internal/services"
	"github.com/desertthunder/cineflix/internal/shared"
	tu "github.com/desertthunder/cineflix/internal/testing"
	"github.com/desertthunder/cineflix/internal/watching"
	"github.com/urfave/cli/v3"
)

// fakeCatalog serves a fixed set of movies. Methods the CLI doesn't call panic through the
// embedded nil interface.
type fakeCatalog struct {
	services.MovieService
	movies []services.TMDBMovie
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{movies: []services.TMDBMovie{
		{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", VoteAverage: 8.4},
		{ID: 329865, Title: "Arrival", ReleaseDate: "2016-11-10", VoteAverage: 7.6},
		{ID: 438631, Title: "Dune", ReleaseDate: "2021-09-15", VoteAverage: 7.8},
	}}
}

func (f *fakeCatalog) Name() string { return "Fake" }

func (f *fakeCatalog) Popular(ctx context.Context, page int) (*services.MoviePage, error) {
	return &services.MoviePage{Page: page, Results: f.movies, TotalPages: 1, TotalResults: len(f.movies)}, nil
}

func (f *fakeCatalog) Search(ctx context.Context, query string, page int) (*services.MoviePage, error) {
	out := &services.MoviePage{Page: page, TotalPages: 1}
	for _, m := range f.movies {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(query)) {
			out.Results = append(out.Results, m)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Details(ctx context.Context, id int) (*services.MovieDetails, error) {
	for _, m := range f.movies {
		if m.ID == id {
			d := &services.MovieDetails{TMDBMovie: m, Runtime: 148, Tagline: "Beyond fear, destiny awaits."}
			d.Genres = []services.Genre{{ID: 878, Name: "Science Fiction"}}
			d.Credits.Crew = []services.CrewMember{{Name: "Denis Villeneuve", Job: "Director"}}
			return d, nil
		}
	}
	return nil, shared.ErrMovieNotFound
}

func (f *fakeCatalog) Genres(ctx context.Context) ([]services.Genre, error) {
	return []services.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}}, nil
}

var testHashParams = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type cliFixture struct {
	runner *Runner
	out    *bytes.Buffer
	clock  *tu.Clock
}

func newCLIFixture(t *testing.T, movies services.MovieService) *cliFixture {
	t.Helper()

	config := shared.DefaultConfig()
	config.Payments.MockDelay = shared.Duration{}
	clock := tu.NewClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	out := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		DB:         tu.MustOpenDB(t),
		Movies:     movies,
		Output:     out,
		Logger:     shared.NopLogger(),
		Clock:      clock.Now,
		HashParams: testHashParams,
	})
	t.Cleanup(func() { runner.Close() })

	ctx := context.Background()
	if err := runner.ready(ctx); err != nil {
		t.Fatalf("ready() error = %v", err)
	}
	if _, err := runner.accounts.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return &cliFixture{runner: runner, out: out, clock: clock}
}

// run executes args against a fresh command tree and returns what the command printed.
func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	f.out.Reset()

	app := &cli.Command{
		Name:      "cineflix",
		Commands:  f.runner.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	err := app.Run(context.Background(), append([]string{"cineflix"}, args...))
	return f.out.String(), err
}

func (f *cliFixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := f.run(t, args...)
	if err != nil {
		t.Fatalf("%v: unexpected error %v", args, err)
	}
	return out
}

func (f *cliFixture) login(t *testing.T) {
	t.Helper()
	f.mustRun(t, "auth", "login", "-e", "demo@cineflix.com", "-p", "Demo@2024!Secure")
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			movies := newFakeCatalog()
			api := services.NewAPIClient("http://127.0.0.1:1", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Movies:     movies,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.movies != movies {
				t.Error("expected movies to be set")
			}
			if runner.client() != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.now == nil {
				t.Error("expected a clock")
			}
			if runner.configName() != "config.toml" {
				t.Errorf("expected default config name, got %s", runner.configName())
			}
		})

		t.Run("client defaults to configured server", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.client() == nil || runner.client() != runner.client() {
				t.Error("expected a single lazily built client")
			}
		})

		t.Run("catalog without credentials", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if _, err := runner.catalog(); !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})
	})

	t.Run("loadConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.CreateConfigFile(path); err != nil {
			t.Fatalf("CreateConfigFile() error = %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NopLogger()})
		defaults := runner.config
		runner.loadConfig(path)

		if runner.config == defaults {
			t.Error("expected config to be replaced by the file")
		}
		if runner.configName() != path {
			t.Errorf("expected config path %s, got %s", path, runner.configName())
		}

		missing := NewRunner(RunnerOpts{Logger: shared.NopLogger()})
		before := missing.config
		missing.loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if missing.config != before {
			t.Error("a missing file must keep the defaults")
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(1, &bytes.Buffer{})})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("done")
			if output.String() != "\ndone\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "plans", "favorites", "watching", "movies", "serve", "api", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil || cmd.Name != want[i] {
				t.Errorf("command %d: expected %s, got %+v", i, want[i], cmd)
			}
		}
	})
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	out := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		ConfigPath: configPath,
		DB:         tu.MustOpenDB(t),
		Output:     out,
		Logger:     shared.NopLogger(),
		HashParams: testHashParams,
	})

	app := &cli.Command{Name: "cineflix", Commands: runner.register(), Writer: io.Discard, ErrWriter: io.Discard}
	if err := app.Run(context.Background(), []string{"cineflix", "setup", "database", "--seed"}); err != nil {
		t.Fatalf("setup database error = %v", err)
	}

	tu.AssertFileExists(t, configPath)
	if !strings.Contains(out.String(), "Database ready") {
		t.Errorf("unexpected output %q", out.String())
	}
	if _, err := runner.accounts.Login(context.Background(), accounts.LoginRequest{Email: "test@test.com", Password: "Test@2024!Pass"}); err != nil {
		t.Errorf("expected seeded demo account, got %v", err)
	}
}

func TestAuthCommands(t *testing.T) {
	t.Run("Login Logout", func(t *testing.T) {
		f := newCLIFixture(t, newFakeCatalog())

		if _, err := f.run(t, "favorites", "list"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated before login, got %v", err)
		}

		if _, err := f.run(t, "auth", "login", "-e", "demo@cineflix.com", "-p", "wrong"); !errors.Is(err, shared.ErrInvalidLogin) {
			t.Errorf("expected ErrInvalidLogin, got %v", err)
		}

		out := f.mustRun(t, "auth", "login", "-e", "Demo@Cineflix.com", "-p", "Demo@2024!Secure")
		if !strings.Contains(out, "Signed in as demo@cineflix.com") {
			t.Errorf("unexpected output %q", out)
		}
		if !f.runner.session.HasSubscription() {
			t.Error("demo account should carry its Premium subscription")
		}

		f.mustRun(t, "favorites", "add", "--title", "Home Movie", "42")
		f.mustRun(t, "auth", "logout")

		if f.runner.session.IsAuthenticated() || f.runner.favorites.Count() != 0 {
			t.Error("logout must end the session and clear favorites")
		}
		if out := f.mustRun(t, "auth", "logout"); !strings.Contains(out, "Not signed in") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Signup", func(t *testing.T) {
		f := newCLIFixture(t, nil)

		out := f.mustRun(t, "auth", "signup", "-e", "new@viewer.com", "-p", "Str0ng!Passw0rd")
		if !strings.Contains(out, "signed in as new@viewer.com") {
			t.Errorf("unexpected output %q", out)
		}
		user, ok := f.runner.session.GetUser()
		if !ok || user.Name != "new" || !user.IsLocalUser {
			t.Errorf("unexpected session user %+v", user)
		}

		if _, err := f.run(t, "auth", "signup", "-e", "new@viewer.com", "-p", "Str0ng!Passw0rd"); !errors.Is(err, shared.ErrUserExists) {
			t.Errorf("expected ErrUserExists, got %v", err)
		}
	})

	t.Run("Status", func(t *testing.T) {
		f := newCLIFixture(t, nil)

		if out := f.mustRun(t, "auth", "status"); !strings.Contains(out, "Not signed in") {
			t.Errorf("unexpected output %q", out)
		}

		f.login(t)
		var status authStatus
		if err := json.Unmarshal([]byte(f.mustRun(t, "auth", "status", "--json")), &status); err != nil {
			t.Fatalf("failed to decode status: %v", err)
		}
		if !status.Authenticated || status.User.Email != "demo@cineflix.com" || status.ExpiresAt != "2024-06-02T12:00:00.000Z" {
			t.Errorf("unexpected status %+v", status)
		}

		out := f.mustRun(t, "auth", "status")
		for _, want := range []string{"demo@cineflix.com", "Premium", "Expires in: 24h0m0s"} {
			if !strings.Contains(out, want) {
				t.Errorf("status missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("Session Expiry", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.login(t)

		f.clock.Advance(25 * time.Hour)
		if _, err := f.run(t, "watching", "list"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected expired session, got %v", err)
		}
	})

	t.Run("Activity Extends The Session", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.login(t)

		f.clock.Advance(20 * time.Hour)
		f.mustRun(t, "watching", "list")
		f.clock.Advance(20 * time.Hour)
		f.mustRun(t, "watching", "list")
	})

	t.Run("Subscribe", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.mustRun(t, "auth", "login", "-e", "test@test.com", "-p", "Test@2024!Pass")

		if _, err := f.run(t, "auth", "subscribe", "--plan", "platinum"); !errors.Is(err, shared.ErrPlanNotFound) {
			t.Errorf("expected ErrPlanNotFound, got %v", err)
		}
		if _, err := f.run(t, "auth", "subscribe", "--plan", "2", "--payment", "cash"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}

		out := f.mustRun(t, "auth", "subscribe", "--plan", "standard", "--payment", "upi")
		if !strings.Contains(out, "Subscribed to Standard") || !strings.Contains(out, "TXN") {
			t.Errorf("unexpected output %q", out)
		}

		sub := f.runner.session.GetSubscription()
		if !sub.Active() || sub.PlanID != 2 || sub.PaymentMethod != "upi" {
			t.Errorf("unexpected subscription %+v", sub)
		}
	})

	t.Run("Plans", func(t *testing.T) {
		f := newCLIFixture(t, nil)

		out := f.mustRun(t, "plans")
		for _, want := range []string{"Basic", "Standard", "Premium", "most popular"} {
			if !strings.Contains(out, want) {
				t.Errorf("plans missing %q", want)
			}
		}
	})
}

func TestLibraryCommands(t *testing.T) {
	t.Run("Favorites", func(t *testing.T) {
		f := newCLIFixture(t, newFakeCatalog())
		f.login(t)

		out := f.mustRun(t, "favorites", "add", "438631", "Arrival", "Nope")
		if !strings.Contains(out, "Imported 2, skipped 0, failed 1 of 3") {
			t.Errorf("unexpected import summary %q", out)
		}

		var favs []favorites.Favorite
		if err := json.Unmarshal([]byte(f.mustRun(t, "favorites", "list", "--json")), &favs); err != nil {
			t.Fatalf("failed to decode favorites: %v", err)
		}
		if len(favs) != 2 || favs[0].Title != "Dune" || favs[0].Duration != "2h 28m" || favs[1].Title != "Arrival" {
			t.Errorf("unexpected favorites %+v", favs)
		}

		out = f.mustRun(t, "favorites", "list")
		if !strings.Contains(out, "My List (2)") || !strings.Contains(out, "Dune (2021)") {
			t.Errorf("unexpected list output %q", out)
		}

		f.mustRun(t, "favorites", "toggle", "438631")
		if f.runner.favorites.IsFavorite(438631) {
			t.Error("toggle should remove an existing favorite")
		}
		f.mustRun(t, "favorites", "toggle", "27205")
		if !f.runner.favorites.IsFavorite(27205) {
			t.Error("toggle should add a missing favorite")
		}

		f.mustRun(t, "favorites", "remove", "329865")
		if f.runner.favorites.Count() != 1 {
			t.Errorf("expected 1 favorite, got %d", f.runner.favorites.Count())
		}

		if _, err := f.run(t, "favorites", "remove", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := f.run(t, "favorites", "add"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		f.mustRun(t, "favorites", "clear")
		if f.runner.favorites.Count() != 0 {
			t.Error("expected favorites cleared")
		}
	})

	t.Run("Manual Add Without Catalog", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.login(t)

		f.mustRun(t, "favorites", "add", "--title", "Home Movie", "--year", "1999", "42")
		favs := f.runner.favorites.Favorites()
		if len(favs) != 1 || favs[0].Title != "Home Movie" || favs[0].Year != "1999" {
			t.Errorf("unexpected favorites %+v", favs)
		}

		if _, err := f.run(t, "favorites", "add", "27205"); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig without a catalog, got %v", err)
		}
		if _, err := f.run(t, "favorites", "toggle", "27205"); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig without a catalog, got %v", err)
		}
	})

	t.Run("Import File", func(t *testing.T) {
		f := newCLIFixture(t, newFakeCatalog())
		f.login(t)
		f.runner.favorites.Add(services.ToMovie(newFakeCatalog().movies[0]))

		path := filepath.Join(t.TempDir(), "list.txt")
		if err := os.WriteFile(path, []byte("# weekend\n27205\nDune\n"), 0644); err != nil {
			t.Fatal(err)
		}

		out := f.mustRun(t, "favorites", "import", "--workers", "2", "--rate", "100", path)
		if !strings.Contains(out, "Imported 1, skipped 1, failed 0 of 2") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Watching", func(t *testing.T) {
		f := newCLIFixture(t, newFakeCatalog())
		f.login(t)

		out := f.mustRun(t, "watching", "play", "-p", "600", "-d", "1200", "438631")
		if !strings.Contains(out, "Dune at 10:00 / 20:00") {
			t.Errorf("unexpected output %q", out)
		}
		f.clock.Advance(time.Minute)
		f.mustRun(t, "watching", "play", "--title", "Short Film", "-p", "30", "-d", "90", "7")

		var entries []watching.Entry
		if err := json.Unmarshal([]byte(f.mustRun(t, "watching", "list", "--json")), &entries); err != nil {
			t.Fatalf("failed to decode entries: %v", err)
		}
		if len(entries) != 2 || entries[0].ID != 7 || entries[1].ID != 438631 {
			t.Errorf("expected most recent first, got %+v", entries)
		}

		if out := f.mustRun(t, "watching", "progress", "438631"); !strings.Contains(out, "Dune: 10:00 / 20:00 (50%)") {
			t.Errorf("unexpected progress %q", out)
		}

		f.clock.Advance(time.Minute)
		f.mustRun(t, "watching", "play", "-p", "900", "-d", "1200", "438631")
		if e, _ := f.runner.watching.Get(438631); e.Progress != 900 || f.runner.watching.Entries()[0].ID != 438631 {
			t.Errorf("replay should update and move to front, got %+v", e)
		}

		if _, err := f.run(t, "watching", "play", "-p", "10", "-d", "0", "438631"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}

		f.mustRun(t, "watching", "remove", "7")
		if f.runner.watching.Count() != 1 {
			t.Errorf("expected 1 entry, got %d", f.runner.watching.Count())
		}
		f.mustRun(t, "watching", "clear")
		if f.runner.watching.Count() != 0 {
			t.Error("expected continue watching cleared")
		}
	})

	t.Run("Export", func(t *testing.T) {
		f := newCLIFixture(t, newFakeCatalog())
		f.login(t)
		f.mustRun(t, "favorites", "add", "--title", "Home Movie", "42")
		f.mustRun(t, "watching", "play", "-p", "600", "-d", "1200", "438631")

		dir := t.TempDir()
		csvPath := filepath.Join(dir, "library.csv")
		f.mustRun(t, "favorites", "export", "-f", "csv", "-o", csvPath)
		data := tu.MustReadFile(t, csvPath)
		if !strings.Contains(data, "Home Movie") || !strings.Contains(data, "Dune") {
			t.Errorf("unexpected CSV:\n%s", data)
		}

		out := f.mustRun(t, "favorites", "export", "-f", "text", "-o", "-")
		if !strings.Contains(out, "Library: Demo User") || !strings.Contains(out, "Favorites: 1") {
			t.Errorf("unexpected text export %q", out)
		}

		mdDir := filepath.Join(dir, "md")
		f.mustRun(t, "favorites", "export", "-f", "markdown", "-o", mdDir)
		tu.AssertFileExists(t, filepath.Join(mdDir, "README.md"))

		if _, err := f.run(t, "favorites", "export", "-f", "xml", "-o", "-"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestMoviesCommands(t *testing.T) {
	f := newCLIFixture(t, newFakeCatalog())

	out := f.mustRun(t, "movies", "popular")
	for _, want := range []string{"Popular (page 1 of 1)", "Inception (2010)", "84% match"} {
		if !strings.Contains(out, want) {
			t.Errorf("popular missing %q:\n%s", want, out)
		}
	}

	if out := f.mustRun(t, "movies", "search", "dun"); !strings.Contains(out, "Dune") || strings.Contains(out, "Arrival") {
		t.Errorf("unexpected search output %q", out)
	}
	if _, err := f.run(t, "movies", "search"); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}

	out = f.mustRun(t, "movies", "details", "438631")
	for _, want := range []string{"Dune (2021)", "2h 28m", "Science Fiction", "Denis Villeneuve"} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q:\n%s", want, out)
		}
	}
	if _, err := f.run(t, "movies", "details", "1"); !errors.Is(err, shared.ErrMovieNotFound) {
		t.Errorf("expected ErrMovieNotFound, got %v", err)
	}

	var page services.MoviePage
	if err := json.Unmarshal([]byte(f.mustRun(t, "movies", "popular", "--json")), &page); err != nil || len(page.Results) != 3 {
		t.Errorf("unexpected JSON page %+v, %v", page, err)
	}

	if out := f.mustRun(t, "movies", "genres"); !strings.Contains(out, "Fake Genres") || !strings.Contains(out, "Action") {
		t.Errorf("unexpected genres %q", out)
	}

	noCatalog := newCLIFixture(t, nil)
	if _, err := noCatalog.run(t, "movies", "popular"); !errors.Is(err, shared.ErrMissingConfig) {
		t.Errorf("expected ErrMissingConfig, got %v", err)
	}
}

func TestAPICommands(t *testing.T) {
	f := newCLIFixture(t, nil)
	ts := httptest.NewServer(server.NewRouter(f.runner.accounts, "", nil))
	defer ts.Close()
	f.runner.api = services.NewAPIClient(ts.URL, ts.Client())

	if out := f.mustRun(t, "api", "health"); !strings.Contains(out, "healthy") {
		t.Errorf("unexpected output %q", out)
	}

	if out := f.mustRun(t, "api", "get", "/api/subscription/plans"); !strings.Contains(out, "Premium") {
		t.Errorf("unexpected plans %q", out)
	}

	out := f.mustRun(t, "api", "post", "-d", `{"email":"test@test.com","password":"Test@2024!Pass"}`, "/api/auth/login")
	if !strings.Contains(out, "test@test.com") {
		t.Errorf("unexpected login response %q", out)
	}

	if _, err := f.run(t, "api", "post", "-d", "{nope", "/api/auth/login"); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.run(t, "api", "post", "-d", `{"email":"test@test.com","password":"wrong"}`, "/api/auth/login"); !errors.Is(err, shared.ErrAPIRequest) {
		t.Errorf("expected ErrAPIRequest, got %v", err)
	}

	t.Run("Remote Login", func(t *testing.T) {
		f.mustRun(t, "auth", "login", "--remote", "-e", "test@test.com", "-p", "Test@2024!Pass")
		if user, ok := f.runner.session.GetUser(); !ok || user.ID != 2 {
			t.Errorf("expected remote user in session, got %+v", user)
		}

		f.mustRun(t, "auth", "subscribe", "--remote", "--plan", "1")
		if sub := f.runner.session.GetSubscription(); !sub.Active() || sub.PlanName != "Basic" {
			t.Errorf("unexpected subscription %+v", sub)
		}
	})

	t.Run("Server Down", func(t *testing.T) {
		down := NewRunner(RunnerOpts{API: services.NewAPIClient("http://127.0.0.1:1", nil), Output: io.Discard})
		if err := down.APIHealth(context.Background(), nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

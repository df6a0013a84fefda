package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/cineflix/internal/favorites"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	th "github.com/desertthunder/cineflix/internal/testing"
	"github.com/desertthunder/cineflix/internal/watching"
)

func testLibrary() *Library {
	favs := []favorites.Favorite{
		{
			Movie:   models.Movie{ID: 42, Title: "Inception", Year: "2010", Match: 88, Image: "/b.jpg"},
			AddedAt: "2024-06-01T12:00:00.000Z",
		},
		{
			Movie:   models.Movie{ID: 7, Title: "Arrival, Part One", Match: 79},
			AddedAt: "2024-06-02T12:00:00.000Z",
		},
	}
	entries := []watching.Entry{
		{
			Movie:       models.Movie{ID: 99, Title: "Dune", Year: "2021", VoteAverage: 7.8},
			Progress:    3725,
			Duration:    9300,
			LastWatched: "2024-06-03T20:00:00.000Z",
		},
	}
	return NewLibrary("Demo User", favs, entries, time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC))
}

func TestExporters(t *testing.T) {
	lib := testLibrary()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(lib)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("CSV output does not parse: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "List,ID,Title,Year,Match,Progress,Added" {
			t.Errorf("CSV missing headers, got: %v", records[0])
		}
		if records[2][2] != "Arrival, Part One" {
			t.Errorf("title with comma not preserved: %q", records[2][2])
		}
		if records[3][0] != "watching" || records[3][5] != "40" {
			t.Errorf("unexpected watching row %v", records[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(lib, "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Demo User's Library",
			"![Cover](cover.jpg)",
			"**Favorites**: 2",
			"1. Inception (2010) (88% match)",
			"1. Dune (2021) [1:02:05 / 2:35:00]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q in:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Empty", func(t *testing.T) {
		data, _ := ExportToMarkdown(NewLibrary("", nil, nil, time.Now()), "")
		output := string(data)
		if !strings.Contains(output, "# Cineflix Library") || strings.Count(output, "_None_") != 2 {
			t.Errorf("unexpected empty Markdown:\n%s", output)
		}
		if strings.Contains(output, "![Cover]") {
			t.Error("Markdown should omit the cover without an image")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(lib)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Favorites: 2", "2. Arrival, Part One\n", "Continue Watching: 1", "1. Dune (40%)"} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q in:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(lib)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var got Library
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("JSON output does not parse: %v", err)
		}
		if got.ExportedAt != "2024-06-04T09:00:00.000Z" {
			t.Errorf("unexpected exportedAt %q", got.ExportedAt)
		}
		if len(got.Favorites) != 2 || len(got.Watching) != 1 || got.Watching[0].Progress != 3725 {
			t.Errorf("unexpected library %+v", got)
		}
		if !strings.Contains(string(data), `"continueWatching"`) {
			t.Error("JSON missing continueWatching key")
		}
	})

	t.Run("Export Dispatch", func(t *testing.T) {
		for _, format := range []string{"csv", "markdown", "md", "text", "txt", "JSON"} {
			if _, err := Export(lib, format); err != nil {
				t.Errorf("Export(%q) error = %v", format, err)
			}
		}

		_, err := Export(lib, "xml")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Export(xml) error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(nil, ""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		data, err := DownloadImage(server.Client(), server.URL+"/w500/poster.jpg")
		if err != nil || string(data) != "jpeg-bytes" {
			t.Errorf("DownloadImage() = %q, %v", data, err)
		}
	})

	t.Run("Non-200", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadImage(server.Client(), server.URL); err == nil {
			t.Error("expected an error for a 404 response")
		}
	})

	t.Run("Body Read Failure", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &th.FCloser{},
		}, nil)}

		if _, err := DownloadImage(client, "http://images.test/x.jpg"); err == nil {
			t.Error("expected an error when the body cannot be read")
		}
	})
}

func TestWriters(t *testing.T) {
	lib := testLibrary()

	t.Run("WriteExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			th.MustChdir(t, t.TempDir())

			path, err := WriteExport(lib, FormatCSV, "")
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if path != "cineflix_library.csv" {
				t.Errorf("Expected 'cineflix_library.csv', got '%s'", path)
			}
			th.AssertFileExists(t, path)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library.txt")

			got, err := WriteExport(lib, FormatText, path)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if got != path {
				t.Errorf("Expected %s, got %s", path, got)
			}
			if !strings.Contains(th.MustReadFile(t, path), "Library: Demo User's Library") {
				t.Error("text export missing title")
			}
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing", "library.json")
			if _, err := WriteExport(lib, FormatJSON, path); err == nil {
				t.Error("expected an error for a missing parent directory")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithCover", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			}))
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "export")
			result, warning, err := WriteMarkdownExport(lib, dir, server.URL, server.Client())
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if warning != "" {
				t.Errorf("unexpected warning %q", warning)
			}

			th.AssertDirExists(t, result.Directory)
			th.AssertFileExists(t, result.CoverImage)
			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
				t.Error("README missing cover reference")
			}
		})

		t.Run("CoverFailureWarns", func(t *testing.T) {
			server := httptest.NewServer(http.NotFoundHandler())
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "export")
			result, warning, err := WriteMarkdownExport(lib, dir, server.URL, server.Client())
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if warning == "" {
				t.Error("expected a warning for the failed cover download")
			}
			if result.CoverImage != "" || len(result.Files) != 1 {
				t.Errorf("unexpected result %+v", result)
			}
		})
	})
}

func TestExtension(t *testing.T) {
	tc := map[string]string{"csv": "csv", "markdown": "md", "MD": "md", "text": "txt", "json": "json"}
	for format, want := range tc {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

// package formatter exports a viewer's library (favorites and continue watching) to CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cineflix/internal/favorites"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/watching"
)

// Format names accepted by [Export].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
)

// Library is a snapshot of one viewer's saved and in-progress movies.
type Library struct {
	Owner      string               `json:"owner,omitempty"`
	ExportedAt string               `json:"exportedAt"`
	Favorites  []favorites.Favorite `json:"favorites"`
	Watching   []watching.Entry     `json:"continueWatching"`
}

// NewLibrary builds a [Library] stamped with now. Nil lists become empty.
func NewLibrary(owner string, favs []favorites.Favorite, entries []watching.Entry, now time.Time) *Library {
	if favs == nil {
		favs = []favorites.Favorite{}
	}
	if entries == nil {
		entries = []watching.Entry{}
	}
	return &Library{Owner: owner, ExportedAt: models.Timestamp(now), Favorites: favs, Watching: entries}
}

// ExportToCSV writes one row per movie with columns: List, ID, Title, Year, Match, Progress, Added
//
// List is "favorite" or "watching". Progress is a rounded percentage for watching rows and empty for favorites.
func ExportToCSV(lib *Library) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"List", "ID", "Title", "Year", "Match", "Progress", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, f := range lib.Favorites {
		record := []string{"favorite", strconv.Itoa(f.ID), f.Title, f.Year, strconv.Itoa(f.Match), "", f.AddedAt}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	for _, e := range lib.Watching {
		record := []string{
			"watching",
			strconv.Itoa(e.ID),
			e.Title,
			e.Year,
			strconv.Itoa(int(math.Round(e.VoteAverage * 10))),
			strconv.Itoa(int(e.Percent() + 0.5)),
			e.LastWatched,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the library as a Markdown document with an optional cover image
func ExportToMarkdown(lib *Library, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title(lib)))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Exported**: %s\n", lib.ExportedAt))
	buf.WriteString(fmt.Sprintf("**Favorites**: %d\n", len(lib.Favorites)))
	buf.WriteString(fmt.Sprintf("**Continue Watching**: %d\n\n", len(lib.Watching)))

	buf.WriteString("## Favorites\n\n")
	for i, f := range lib.Favorites {
		buf.WriteString(fmt.Sprintf("%d. %s%s (%d%% match)\n", i+1, f.Title, yearPart(f.Year), f.Match))
	}
	if len(lib.Favorites) == 0 {
		buf.WriteString("_None_\n")
	}

	buf.WriteString("\n## Continue Watching\n\n")
	for i, e := range lib.Watching {
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s / %s]\n",
			i+1, e.Title, yearPart(e.Year),
			shared.FormatDuration(int(e.Progress)), shared.FormatDuration(int(e.Duration))))
	}
	if len(lib.Watching) == 0 {
		buf.WriteString("_None_\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders the library as plain text
func ExportToText(lib *Library) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Library: %s\n", title(lib)))
	buf.WriteString(fmt.Sprintf("Favorites: %d\n", len(lib.Favorites)))
	for i, f := range lib.Favorites {
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, f.Title, yearPart(f.Year)))
	}

	buf.WriteString(fmt.Sprintf("\nContinue Watching: %d\n", len(lib.Watching)))
	for i, e := range lib.Watching {
		buf.WriteString(fmt.Sprintf("%d. %s (%.0f%%)\n", i+1, e.Title, e.Percent()))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the library as indented JSON
func ExportToJSON(lib *Library) ([]byte, error) {
	return shared.MarshalJSON(lib, true)
}

// Export renders lib in the named format.
func Export(lib *Library, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(lib)
	case FormatMarkdown, "md":
		return ExportToMarkdown(lib, "")
	case FormatText, "txt":
		return ExportToText(lib)
	case FormatJSON:
		return ExportToJSON(lib)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidInput, format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when imageURL downloads, {dir}/cover.jpg.
//
// A failed cover download is returned as a warning and does not fail the export.
func WriteMarkdownExport(lib *Library, outputDir, imageURL string, client *http.Client) (*MarkdownExportResult, string, error) {
	if outputDir == "" {
		outputDir = "cineflix_library"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var warning, coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(client, imageURL)
		if err != nil {
			warning = fmt.Sprintf("failed to download cover image: %v", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				warning = fmt.Sprintf("failed to save cover image: %v", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(lib, coverImageFilename)
	if err != nil {
		return nil, warning, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, warning, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, warning, nil
}

// WriteExport renders lib in format and writes it to path.
//
// Defaults to cineflix_library.{ext} when path is empty.
func WriteExport(lib *Library, format, path string) (string, error) {
	data, err := Export(lib, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "cineflix_library." + Extension(format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return path, nil
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return "md"
	case FormatText, "txt":
		return "txt"
	default:
		return strings.ToLower(format)
	}
}

func title(lib *Library) string {
	if lib.Owner == "" {
		return "Cineflix Library"
	}
	return lib.Owner + "'s Library"
}

func yearPart(year string) string {
	if year == "" {
		return ""
	}
	return " (" + year + ")"
}

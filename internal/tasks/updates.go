package tasks

import (
	"fmt"

	"github.com/desertthunder/cineflix/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveMovies Phase = iota
	SaveFavorites
)

func (p Phase) String() string {
	switch p {
	case ResolveMovies:
		return "resolve_movies"
	case SaveFavorites:
		return "save_favorites"
	default:
		return ""
	}
}

func resolvingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveMovies,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d movies...", total),
	}
}

func resolvedUpdate(step, total int, movie *models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, movie.Title),
		Data:    movie,
	}
}

func resolveFailedUpdate(step, total int, ref string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, ref, err),
	}
}

func savingUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveFavorites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Saving %d favorites...", total),
	}
}

package accounts

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
)

var plans = []models.Plan{
	{
		ID:      1,
		Slug:    "basic",
		Name:    "Basic",
		Price:   6.99,
		Quality: "Good (720p)",
		Features: []string{
			"Watch on 1 device at a time",
			"HD available",
			"Unlimited movies and TV shows",
			"Cancel anytime",
		},
	},
	{
		ID:      2,
		Slug:    "standard",
		Name:    "Standard",
		Price:   12.99,
		Quality: "Better (1080p)",
		Features: []string{
			"Watch on 2 devices at a time",
			"Full HD available",
			"Unlimited movies and TV shows",
			"Cancel anytime",
			"Download on 2 devices",
		},
		Popular: true,
	},
	{
		ID:      3,
		Slug:    "premium",
		Name:    "Premium",
		Price:   19.99,
		Quality: "Best (4K + HDR)",
		Features: []string{
			"Watch on 4 devices at a time",
			"Ultra HD available",
			"Unlimited movies and TV shows",
			"Cancel anytime",
			"Download on 4 devices",
			"Spatial audio",
		},
	},
}

// Plans returns a copy of the plan catalog, cheapest first.
func Plans() []models.Plan {
	out := make([]models.Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan by numeric id.
func PlanByID(id int) (models.Plan, error) {
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Plan{}, fmt.Errorf("%w: %d", shared.ErrPlanNotFound, id)
}

// PlanBySlug looks up a plan by slug ("basic", "standard", "premium"), ignoring case.
func PlanBySlug(slug string) (models.Plan, error) {
	for _, p := range plans {
		if strings.EqualFold(p.Slug, strings.TrimSpace(slug)) {
			return p, nil
		}
	}
	return models.Plan{}, fmt.Errorf("%w: %s", shared.ErrPlanNotFound, slug)
}

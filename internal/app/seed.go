package app

import (
	"context"
	"fmt"
	"time"

	"soup_menu_bot/internal/domain/soup"
)

// DefaultLocations are the cafeteria sites created by Seed.
var DefaultLocations = []string{"HQ", "HSL", "LD"}

// Seed creates the default locations and a few sample soups for today and tomorrow.
// Locations are idempotent; soups are added on every run.
func Seed(ctx context.Context, admin *AdminService, today time.Time) error {
	for _, name := range DefaultLocations {
		if _, err := admin.AddLocation(ctx, name); err != nil {
			return fmt.Errorf("failed to seed location %s: %w", name, err)
		}
	}

	tomorrow := today.AddDate(0, 0, 1)
	samples := []soup.NewSoup{
		{
			Name:       "Tomatensoep met Balletjes",
			Vegetarian: false,
			Date:       today,
			Prices: []soup.LocationPrice{
				{LocationName: "HQ", Price: 250},
				{LocationName: "HSL", Price: 275},
			},
		},
		{
			Name:       "Groentesoep",
			Vegetarian: true,
			Date:       today,
			Prices: []soup.LocationPrice{
				{LocationName: "LD", Price: 250},
				{LocationName: "HQ", Price: 250},
			},
		},
		{
			Name:       "Champignonsoep",
			Vegetarian: true,
			Date:       tomorrow,
			Prices: []soup.LocationPrice{
				{LocationName: "HQ", Price: 250},
				{LocationName: "HSL", Price: 250},
				{LocationName: "LD", Price: 250},
			},
		},
	}
	for _, draft := range samples {
		if _, err := admin.AddSoup(ctx, draft); err != nil {
			return fmt.Errorf("failed to seed soup %s: %w", draft.Name, err)
		}
	}
	return nil
}

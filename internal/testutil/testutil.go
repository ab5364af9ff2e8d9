// Package testutil provides shared helpers for package tests.
package testutil

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/category"
	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/quality"
	"github.com/overfiltrr/overfiltrr/internal/rules"
)

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// NopLogger returns a no-op logger for tests that don't need output.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// StringPtr returns a pointer to a string.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to an int.
func IntPtr(i int) *int {
	return &i
}

// BoolPtr returns a pointer to a bool.
func BoolPtr(b bool) *bool {
	return &b
}

// TVCategories returns a series set: Anime (weight 100, keyword "anime",
// Japanese originals -> profile 12, default 7), English (weight 50, no
// filters, default 5) and General (weight 1, the default).
func TVCategories() *category.Set {
	return &category.Set{
		MediaType: media.TypeTV,
		Default:   "General",
		Definitions: []category.Definition{
			{
				Name:    "Anime",
				Weight:  IntPtr(100),
				Filters: category.Filters{Keywords: []string{"anime"}},
				Apply: category.Apply{
					RootFolder:       "/tv/anime",
					ServerID:         IntPtr(1),
					DefaultProfileID: 7,
					AppName:          "Sonarr Anime",
				},
				ProfileRules: []quality.Rule{{
					Priority:  1,
					ProfileID: 12,
					Logic:     rules.LogicOr,
					Condition: rules.Condition{{
						Attribute: media.AttrOriginalLanguage,
						Operator:  rules.OpEqual,
						Operand:   rules.Value("ja"),
					}},
				}},
			},
			{
				Name:   "English",
				Weight: IntPtr(50),
				Apply:  category.Apply{RootFolder: "/tv/english", ServerID: IntPtr(0), DefaultProfileID: 5},
			},
			{
				Name:   "General",
				Weight: IntPtr(1),
				Apply:  category.Apply{RootFolder: "/tv", ServerID: IntPtr(0), DefaultProfileID: 4},
			},
		},
	}
}

// MovieCategories returns a movie set: KidMovies (weight 80, excludes TV-MA)
// and EverythingElse (weight 10, default).
func MovieCategories() *category.Set {
	return &category.Set{
		MediaType: media.TypeMovie,
		Default:   "EverythingElse",
		Definitions: []category.Definition{
			{
				Name:   "KidMovies",
				Weight: IntPtr(80),
				Filters: category.Filters{
					Genres:          []string{"Animation", "Family"},
					ExcludedRatings: []string{"TV-MA"},
				},
				Apply: category.Apply{RootFolder: "/movies/kids", ServerID: IntPtr(0), DefaultProfileID: 3},
			},
			{
				Name:   "EverythingElse",
				Weight: IntPtr(10),
				Apply:  category.Apply{RootFolder: "/movies", ServerID: IntPtr(0), DefaultProfileID: 2},
			},
		},
	}
}

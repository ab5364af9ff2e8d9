package overseerr

import (
	"strconv"
	"strings"

	"github.com/overfiltrr/overfiltrr/internal/media"
)

const ratingRegion = "US"

// ToDetails normalizes movie metadata.
func (m *MovieDetails) ToDetails() *media.Details {
	var ratings []string
	for _, country := range m.Releases.Results {
		if !strings.EqualFold(country.ISO3166, ratingRegion) {
			continue
		}
		for _, rd := range country.ReleaseDates {
			if rd.Certification != "" {
				ratings = append(ratings, rd.Certification)
			}
		}
	}

	return &media.Details{
		Attributes: media.Attributes{
			MediaType:           media.TypeMovie,
			Genres:              names(m.Genres),
			Keywords:            names(m.Keywords),
			ReleaseYear:         parseYear(m.ReleaseDate),
			OriginalLanguage:    m.OriginalLanguage,
			Providers:           providerNames(m.WatchProviders.Region(ratingRegion)),
			ProductionCompanies: names(m.ProductionCompanies),
			Status:              m.Status,
			Rating:              media.ReduceRatings(ratings),
		},
		TMDbID:     m.ID,
		Title:      m.Title,
		Overview:   m.Overview,
		IMDbID:     m.IMDbID,
		PosterPath: m.PosterPath,
		Ratings:    ratings,
	}
}

// ToDetails normalizes series metadata.
func (t *TVDetails) ToDetails() *media.Details {
	var ratings []string
	for _, cr := range t.ContentRatings.Results {
		if strings.EqualFold(cr.ISO3166, ratingRegion) && cr.Rating != "" {
			ratings = append(ratings, cr.Rating)
		}
	}

	networks := names(t.Networks)
	if networks == nil {
		networks = []string{}
	}

	return &media.Details{
		Attributes: media.Attributes{
			MediaType:           media.TypeTV,
			Genres:              names(t.Genres),
			Keywords:            names(t.Keywords),
			ReleaseYear:         parseYear(t.FirstAirDate),
			OriginalLanguage:    t.OriginalLanguage,
			Providers:           providerNames(t.WatchProviders.Region(ratingRegion)),
			ProductionCompanies: names(t.ProductionCompanies),
			Networks:            networks,
			Status:              t.Status,
			Rating:              media.ReduceRatings(ratings),
		},
		TMDbID:     t.ID,
		Title:      t.Name,
		Overview:   t.Overview,
		IMDbID:     t.ExternalIDs.IMDbID,
		PosterPath: t.PosterPath,
		Ratings:    ratings,
	}
}

func names(items []Named) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			out = append(out, it.Name)
		}
	}
	return out
}

func providerNames(ps []Provider) []string {
	var out []string
	for _, p := range ps {
		if n := p.DisplayName(); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// parseYear reads the year from a YYYY-MM-DD date. Malformed dates yield 0.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || (len(date) > 4 && date[4] != '-') {
		return 0
	}
	return y
}

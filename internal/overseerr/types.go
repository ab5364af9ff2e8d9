package overseerr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes integers that may arrive as JSON numbers, numeric strings,
// or empty strings. Webhook templates render every value as a string.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// Named is the {id, name} shape used for genres, keywords, companies and networks.
type Named struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Keywords accepts either a plain list or a {"results": [...]} object.
type Keywords []Named

func (k *Keywords) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*k = nil
		return nil
	}
	if data[0] == '[' {
		var list []Named
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*k = list
		return nil
	}
	var wrapped struct {
		Results  []Named `json:"results"`
		Keywords []Named `json:"keywords"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if len(wrapped.Results) > 0 {
		*k = wrapped.Results
	} else {
		*k = wrapped.Keywords
	}
	return nil
}

// Provider is a streaming provider entry. Overseerr uses "name" while the raw
// TMDB shape uses "provider_name".
type Provider struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	ProviderName string `json:"provider_name"`
}

func (p Provider) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ProviderName
}

// RegionProviders lists providers for one region.
type RegionProviders struct {
	ISO3166  string     `json:"iso_3166_1"`
	Flatrate []Provider `json:"flatrate"`
}

// WatchProviders accepts both the Overseerr list shape and the TMDB
// {"results": {"US": {...}}} shape.
type WatchProviders []RegionProviders

func (w *WatchProviders) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*w = nil
		return nil
	}
	if data[0] == '[' {
		var list []RegionProviders
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*w = list
		return nil
	}
	var wrapped struct {
		Results map[string]RegionProviders `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	out := make([]RegionProviders, 0, len(wrapped.Results))
	for region, rp := range wrapped.Results {
		rp.ISO3166 = region
		out = append(out, rp)
	}
	*w = out
	return nil
}

// Region returns the flatrate providers for an ISO 3166-1 region code.
func (w WatchProviders) Region(code string) []Provider {
	for _, rp := range w {
		if strings.EqualFold(rp.ISO3166, code) {
			return rp.Flatrate
		}
	}
	return nil
}

// ReleaseDate is a single TMDB release with its certification.
type ReleaseDate struct {
	Certification string `json:"certification"`
	Type          int    `json:"type"`
}

// CountryReleases groups release dates by country.
type CountryReleases struct {
	ISO3166      string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

// ContentRating is a TV certification for one country.
type ContentRating struct {
	ISO3166 string `json:"iso_3166_1"`
	Rating  string `json:"rating"`
}

// MovieDetails is the subset of GET /movie/{id} the engine reads.
type MovieDetails struct {
	ID                  int            `json:"id"`
	Title               string         `json:"title"`
	OriginalLanguage    string         `json:"originalLanguage"`
	ReleaseDate         string         `json:"releaseDate"`
	Status              string         `json:"status"`
	Overview            string         `json:"overview"`
	PosterPath          string         `json:"posterPath"`
	IMDbID              string         `json:"imdbId"`
	Genres              []Named        `json:"genres"`
	Keywords            Keywords       `json:"keywords"`
	ProductionCompanies []Named        `json:"productionCompanies"`
	WatchProviders      WatchProviders `json:"watchProviders"`
	Releases            struct {
		Results []CountryReleases `json:"results"`
	} `json:"releases"`
}

// TVDetails is the subset of GET /tv/{id} the engine reads.
type TVDetails struct {
	ID                  int            `json:"id"`
	Name                string         `json:"name"`
	OriginalLanguage    string         `json:"originalLanguage"`
	FirstAirDate        string         `json:"firstAirDate"`
	Status              string         `json:"status"`
	Overview            string         `json:"overview"`
	PosterPath          string         `json:"posterPath"`
	Genres              []Named        `json:"genres"`
	Keywords            Keywords       `json:"keywords"`
	ProductionCompanies []Named        `json:"productionCompanies"`
	Networks            []Named        `json:"networks"`
	WatchProviders      WatchProviders `json:"watchProviders"`
	ContentRatings      struct {
		Results []ContentRating `json:"results"`
	} `json:"contentRatings"`
	ExternalIDs struct {
		IMDbID string `json:"imdbId"`
	} `json:"externalIds"`
}

// Request statuses reported by Overseerr.
const (
	RequestStatusPending  = 1
	RequestStatusApproved = 2
	RequestStatusDeclined = 3
)

// MediaRequest is the subset of a request object returned by the request endpoints.
type MediaRequest struct {
	ID     int `json:"id"`
	Status int `json:"status"`
}

// StatusText describes the request status.
func (r MediaRequest) StatusText() string {
	switch r.Status {
	case RequestStatusPending:
		return "Pending Approval"
	case RequestStatusApproved:
		return "Approved"
	case RequestStatusDeclined:
		return "Declined"
	default:
		return "Unknown Status"
	}
}

// RequestUpdate is the body of PUT /request/{id}.
type RequestUpdate struct {
	MediaType  string `json:"mediaType"`
	RootFolder string `json:"rootFolder"`
	ServerID   int    `json:"serverId"`
	ProfileID  int    `json:"profileId"`
	Seasons    []int  `json:"seasons,omitempty"`
}

// ServerStatus is the response of GET /status.
type ServerStatus struct {
	Version         string `json:"version"`
	CommitTag       string `json:"commitTag"`
	UpdateAvailable bool   `json:"updateAvailable"`
}

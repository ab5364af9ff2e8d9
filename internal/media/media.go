// Package media describes the request-scoped view of a movie or series that
// categorization and quality-profile rules are evaluated against.
package media

import (
	"fmt"
	"strings"
)

// Type identifies which request flow a piece of media belongs to.
type Type string

const (
	TypeMovie Type = "movie"
	TypeTV    Type = "tv"
)

// ParseType normalizes an inbound media type string.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return TypeMovie, nil
	case "tv", "series", "show":
		return TypeTV, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

func (t Type) String() string {
	return string(t)
}

// Attribute names usable in rule conditions.
const (
	AttrMediaType           = "media_type"
	AttrGenres              = "genres"
	AttrKeywords            = "keywords"
	AttrReleaseYear         = "release_year"
	AttrOriginalLanguage    = "original_language"
	AttrProviders           = "providers"
	AttrProductionCompanies = "production_companies"
	AttrNetworks            = "networks"
	AttrStatus              = "status"
	AttrRating              = "rating"
)

var listAttributes = map[string]bool{
	AttrGenres:              true,
	AttrKeywords:            true,
	AttrProviders:           true,
	AttrProductionCompanies: true,
	AttrNetworks:            true,
}

var scalarAttributes = map[string]bool{
	AttrMediaType:        true,
	AttrReleaseYear:      true,
	AttrOriginalLanguage: true,
	AttrStatus:           true,
	AttrRating:           true,
}

// IsKnownAttribute reports whether name can appear in a condition.
func IsKnownAttribute(name string) bool {
	return listAttributes[name] || scalarAttributes[name]
}

// IsListAttribute reports whether name refers to a set-valued attribute.
func IsListAttribute(name string) bool {
	return listAttributes[name]
}

// AttributeNames returns every attribute name, lists first.
func AttributeNames() []string {
	return []string{
		AttrGenres, AttrKeywords, AttrProviders, AttrProductionCompanies, AttrNetworks,
		AttrMediaType, AttrReleaseYear, AttrOriginalLanguage, AttrStatus, AttrRating,
	}
}

// Attributes is the normalized metadata of one request. Zero values mean
// "unknown": an empty string, a zero year, or a nil Networks slice on a movie
// are reported as absent by Lookup.
type Attributes struct {
	MediaType           Type     `json:"mediaType"`
	Genres              []string `json:"genres"`
	Keywords            []string `json:"keywords"`
	ReleaseYear         int      `json:"releaseYear,omitempty"`
	OriginalLanguage    string   `json:"originalLanguage,omitempty"`
	Providers           []string `json:"providers"`
	ProductionCompanies []string `json:"productionCompanies"`
	Networks            []string `json:"networks,omitempty"`
	Status              string   `json:"status,omitempty"`
	Rating              string   `json:"rating,omitempty"`
}

// Value is the result of an attribute lookup. Exactly one of List or Scalar
// is meaningful, depending on IsList.
type Value struct {
	IsList bool
	List   []string
	Scalar any
}

// Lookup returns the named attribute and whether it is present.
func (a Attributes) Lookup(name string) (Value, bool) {
	switch name {
	case AttrGenres:
		return listValue(a.Genres), true
	case AttrKeywords:
		return listValue(a.Keywords), true
	case AttrProviders:
		return listValue(a.Providers), true
	case AttrProductionCompanies:
		return listValue(a.ProductionCompanies), true
	case AttrNetworks:
		if a.MediaType != TypeTV {
			return Value{}, false
		}
		return listValue(a.Networks), true
	case AttrMediaType:
		if a.MediaType == "" {
			return Value{}, false
		}
		return Value{Scalar: string(a.MediaType)}, true
	case AttrReleaseYear:
		if a.ReleaseYear == 0 {
			return Value{}, false
		}
		return Value{Scalar: a.ReleaseYear}, true
	case AttrOriginalLanguage:
		return stringValue(a.OriginalLanguage)
	case AttrStatus:
		return stringValue(a.Status)
	case AttrRating:
		return stringValue(a.Rating)
	}
	return Value{}, false
}

func listValue(items []string) Value {
	return Value{IsList: true, List: items}
}

func stringValue(s string) (Value, bool) {
	if s == "" {
		return Value{}, false
	}
	return Value{Scalar: s}, true
}

// Details bundles the attributes with descriptive fields that only feed logs
// and notifications.
type Details struct {
	Attributes Attributes `json:"attributes"`
	TMDbID     int        `json:"tmdbId"`
	Title      string     `json:"title"`
	Overview   string     `json:"overview,omitempty"`
	IMDbID     string     `json:"imdbId,omitempty"`
	PosterPath string     `json:"posterPath,omitempty"`
	// Ratings holds every US certification seen before reduction.
	Ratings []string `json:"ratings,omitempty"`
}

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// PosterURL returns the TMDB w500 image URL, or "" when no poster is known.
func (d *Details) PosterURL() string {
	if d.PosterPath == "" {
		return ""
	}
	return posterBaseURL + d.PosterPath
}

// IMDbURL returns the IMDb title link, or "" when no id is known.
func (d *Details) IMDbURL() string {
	if d.IMDbID == "" {
		return ""
	}
	return "https://www.imdb.com/title/" + d.IMDbID + "/"
}

// Package category holds the configured destination libraries and picks the
// one a request belongs to.
package category

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/quality"
)

// MatchMode controls how the keyword and genre filters combine.
type MatchMode string

const (
	MatchAll MatchMode = "all"
	MatchAny MatchMode = "any"
)

// RatingPreference is the older ceiling/prefer block. It is parsed so that
// existing files still load, but matching ignores it.
type RatingPreference struct {
	Ceiling string   `yaml:"ceiling" json:"ceiling,omitempty"`
	Prefer  []string `yaml:"prefer" json:"prefer,omitempty"`
}

// Filters narrows which requests a category accepts.
type Filters struct {
	Genres          []string          `yaml:"genres" json:"genres,omitempty"`
	Keywords        []string          `yaml:"keywords" json:"keywords,omitempty"`
	ExcludedRatings []string          `yaml:"excluded_ratings" json:"excludedRatings,omitempty"`
	Ratings         *RatingPreference `yaml:"ratings" json:"-"`
	Match           MatchMode         `yaml:"match" json:"match,omitempty"`
}

// Empty reports whether no positive filter is declared.
func (f Filters) Empty() bool {
	return len(f.Genres) == 0 && len(f.Keywords) == 0
}

// Apply is what gets written back to the request when the category wins.
type Apply struct {
	RootFolder       string `yaml:"root_folder" json:"rootFolder"`
	ServerID         *int   `yaml:"server_id" json:"serverId,omitempty"`
	SonarrID         *int   `yaml:"sonarr_id" json:"-"`
	RadarrID         *int   `yaml:"radarr_id" json:"-"`
	DefaultProfileID int    `yaml:"default_profile_id" json:"defaultProfileId,omitempty"`
	AppName          string `yaml:"app_name" json:"appName,omitempty"`
}

// Server returns the destination server id. server_id takes precedence over
// the sonarr_id/radarr_id spelling for the set's media type.
func (a Apply) Server(mt media.Type) (int, bool) {
	if a.ServerID != nil {
		return *a.ServerID, true
	}
	if mt == media.TypeTV && a.SonarrID != nil {
		return *a.SonarrID, true
	}
	if mt == media.TypeMovie && a.RadarrID != nil {
		return *a.RadarrID, true
	}
	return 0, false
}

// Definition is one configured category.
type Definition struct {
	Name         string         `yaml:"-" json:"name"`
	Filters      Filters        `yaml:"filters" json:"filters"`
	Weight       *int           `yaml:"weight" json:"weight"`
	Apply        Apply          `yaml:"apply" json:"apply"`
	ProfileRules []quality.Rule `yaml:"quality_profile_rules" json:"profileRules,omitempty"`
}

func (d *Definition) UnmarshalYAML(node *yaml.Node) error {
	type plain Definition
	var raw struct {
		plain        `yaml:",inline"`
		ProfileRules []quality.Rule `yaml:"profile_rules"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = Definition(raw.plain)
	if len(d.ProfileRules) == 0 {
		d.ProfileRules = raw.ProfileRules
	}
	return nil
}

// WeightValue returns the weight, or 0 when unset.
func (d *Definition) WeightValue() int {
	if d.Weight == nil {
		return 0
	}
	return *d.Weight
}

// SelectProfile runs the category's profile rules against attrs.
func (d *Definition) SelectProfile(attrs media.Attributes) quality.Selection {
	return quality.Select(attrs, d.ProfileRules, d.Apply.DefaultProfileID)
}

// Set is the ordered collection of categories for one media type.
type Set struct {
	MediaType   media.Type   `json:"mediaType"`
	Default     string       `json:"default"`
	Definitions []Definition `json:"categories"`
}

// UnmarshalYAML decodes the mapping form
//
//	default: General
//	Anime: {...}
//	General: {...}
//
// keeping categories in declaration order.
func (s *Set) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: categories must be a mapping", node.Line)
	}

	out := Set{MediaType: s.MediaType}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		if key == "default" {
			if err := val.Decode(&out.Default); err != nil {
				return fmt.Errorf("default: %w", err)
			}
			continue
		}
		if seen[key] {
			return fmt.Errorf("line %d: category %q declared twice", node.Content[i].Line, key)
		}
		seen[key] = true

		var def Definition
		if err := val.Decode(&def); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		def.Name = key
		out.Definitions = append(out.Definitions, def)
	}
	*s = out
	return nil
}

// Lookup returns the named category.
func (s *Set) Lookup(name string) (*Definition, bool) {
	for i := range s.Definitions {
		if s.Definitions[i].Name == name {
			return &s.Definitions[i], true
		}
	}
	return nil, false
}

// DefaultDefinition returns the fallback category.
func (s *Set) DefaultDefinition() (*Definition, bool) {
	return s.Lookup(s.Default)
}

// Validate reports every structural problem in the set.
func (s *Set) Validate() error {
	var errs []error
	if s.Default == "" {
		errs = append(errs, errors.New("default category is required"))
	} else if _, ok := s.Lookup(s.Default); !ok {
		errs = append(errs, fmt.Errorf("default category %q is not defined", s.Default))
	}

	serverKey := "radarr_id"
	if s.MediaType == media.TypeTV {
		serverKey = "sonarr_id"
	}

	for i := range s.Definitions {
		d := &s.Definitions[i]
		var derrs []error
		if d.Weight == nil {
			derrs = append(derrs, errors.New("weight is required"))
		}
		if d.Apply.RootFolder == "" {
			derrs = append(derrs, errors.New("apply.root_folder is required"))
		}
		if _, ok := d.Apply.Server(s.MediaType); !ok {
			derrs = append(derrs, fmt.Errorf("apply.server_id (or %s) is required", serverKey))
		}
		switch d.Filters.Match {
		case "", MatchAll, MatchAny:
		default:
			derrs = append(derrs, fmt.Errorf("filters.match must be %q or %q", MatchAll, MatchAny))
		}
		if err := quality.ValidateRules(d.ProfileRules, d.Apply.DefaultProfileID); err != nil {
			if j, ok := err.(interface{ Unwrap() []error }); ok {
				derrs = append(derrs, j.Unwrap()...)
			} else {
				derrs = append(derrs, err)
			}
		}
		for _, err := range derrs {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Deprecations lists categories that still use the ratings ceiling/prefer block.
func (s *Set) Deprecations() []string {
	if s == nil {
		return nil
	}
	var names []string
	for _, d := range s.Definitions {
		if d.Filters.Ratings != nil {
			names = append(names, d.Name)
		}
	}
	return names
}

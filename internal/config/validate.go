package config

import (
	"net/url"
	"strings"

	"github.com/overfiltrr/overfiltrr/internal/category"
)

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "fatal": true, "critical": true,
}

// Validate checks the configuration and returns a *ConfigError listing every
// problem, or nil.
func (c *Config) Validate() error {
	e := &ConfigError{Path: c.File, Missing: c.missingEnv}

	if c.Overseerr.BaseURL == "" {
		e.add("overseerr.base_url is required")
	} else if u, err := url.Parse(c.Overseerr.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		e.add("overseerr.base_url %q is not an absolute URL", c.Overseerr.BaseURL)
	}
	if c.Overseerr.APIKey == "" {
		e.add("overseerr.api_key is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		e.add("server.port must be between 1 and 65535")
	}
	if c.Server.Threads <= 0 {
		e.add("server.threads must be positive")
	}
	if c.Server.ConnectionLimit <= 0 {
		e.add("server.connection_limit must be positive")
	}

	if !validLevels[strings.ToLower(c.Logging.Level)] {
		e.add("logging.level %q is not a known level", c.Logging.Level)
	}
	if _, err := category.NewKeywordMatcher(c.Matching.Keywords, c.Matching.Threshold); err != nil {
		e.add("matching: %v", err)
	}
	if c.Dedup.Enabled && c.Dedup.TTL <= 0 {
		e.add("dedup.ttl must be positive when dedup is enabled")
	}

	validateSet(e, "tv_categories", c.TVCategories)
	validateSet(e, "movie_categories", c.MovieCategories)

	if !e.HasErrors() {
		return nil
	}
	return e
}

func validateSet(e *ConfigError, section string, set *category.Set) {
	if set == nil || (len(set.Definitions) == 0 && set.Default == "") {
		e.add("%s: at least one category and a default are required", section)
		return
	}
	if err := set.Validate(); err != nil {
		for _, msg := range flatten(err) {
			e.add("%s: %s", section, msg)
		}
	}
}

// flatten expands joined errors into one message per leaf.
func flatten(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, inner := range joined.Unwrap() {
			out = append(out, flatten(inner)...)
		}
		return out
	}
	return []string{err.Error()}
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/overfiltrr/overfiltrr/internal/category"
	"github.com/overfiltrr/overfiltrr/internal/config"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and print the category tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			verr := cfg.Validate()
			printCategories(out, cfg)
			if verr != nil {
				return verr
			}

			source := cfg.File
			if source == "" {
				source = "defaults and environment"
			}
			fmt.Fprintf(out, "Configuration from %s is valid.\n", source)
			return nil
		},
	}
}

var categoryHeaders = []string{"Category", "Weight", "Genres", "Keywords", "Excluded Ratings", "Root Folder", "Server", "Profile", "Rules"}

var categoryAligns = []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}

func printCategories(out io.Writer, cfg *config.Config) {
	for _, set := range []*category.Set{cfg.TVCategories, cfg.MovieCategories} {
		if set == nil || len(set.Definitions) == 0 {
			continue
		}
		title := fmt.Sprintf("%s categories (default: %s)", strings.ToUpper(set.MediaType.String()), set.Default)
		fmt.Fprintln(out, renderTable(title, categoryHeaders, categoryRows(set), categoryAligns))

		for _, name := range set.Deprecations() {
			fmt.Fprintf(out, "warning: %s: filters.ratings is deprecated and ignored, use filters.excluded_ratings\n", name)
		}
		fmt.Fprintln(out)
	}
}

func categoryRows(set *category.Set) [][]string {
	rows := make([][]string, 0, len(set.Definitions))
	for i := range set.Definitions {
		d := &set.Definitions[i]

		name := d.Name
		if name == set.Default {
			name += " *"
		}
		server := "-"
		if id, ok := d.Apply.Server(set.MediaType); ok {
			server = strconv.Itoa(id)
		}

		rows = append(rows, []string{
			name,
			strconv.Itoa(d.WeightValue()),
			joinOrDash(d.Filters.Genres),
			joinOrDash(d.Filters.Keywords),
			joinOrDash(d.Filters.ExcludedRatings),
			d.Apply.RootFolder,
			server,
			strconv.Itoa(d.Apply.DefaultProfileID),
			strconv.Itoa(len(d.ProfileRules)),
		})
	}
	return rows
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

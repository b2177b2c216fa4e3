package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spboyer/promptplus/internal/catalog"
	"github.com/spboyer/promptplus/internal/validation"
	"github.com/spf13/cobra"
)

// validationReport is the --json shape of validate.
type validationReport struct {
	Valid   []string            `json:"valid"`
	Invalid []invalidRecord     `json:"invalid"`
	Lint    map[string][]string `json:"lint,omitempty"`
}

type invalidRecord struct {
	Unit  string `json:"unit"`
	Error string `json:"error"`
}

func (r validationReport) failures() int {
	return len(r.Invalid) + len(r.Lint)
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate a strategy catalog",
		Long: `Validate every record in a strategy catalog.

Records are checked against the strategy schema and templates are checked
for exactly one placeholder. Without a directory, the configured catalog
is validated. Exits with status 1 when any record fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat *catalog.Catalog
				err error
			)
			if len(args) == 1 {
				cat, err = catalog.LoadDir(cmd.Context(), args[0], catalog.Options{
					Concurrency: a.cfg.Catalog.Concurrency,
					Logger:      a.logger,
				})
			} else {
				cat, err = a.loadCatalog(cmd.Context())
			}
			if err != nil {
				return err
			}

			report := buildValidationReport(cat)
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printValidationReport(newPrinter(cmd.OutOrStdout()), report)
			}

			if n := report.failures(); n > 0 {
				return &ValidationFailureError{Message: fmt.Sprintf("%d strategy record(s) failed validation", n)}
			}
			return nil
		},
	}
}

func buildValidationReport(cat *catalog.Catalog) validationReport {
	report := validationReport{Valid: []string{}, Invalid: []invalidRecord{}}
	for _, w := range cat.Warnings() {
		report.Invalid = append(report.Invalid, invalidRecord{Unit: w.Unit, Error: w.Err.Error()})
	}
	for _, s := range cat.All() {
		if problems := validation.LintTemplate(s.Template); len(problems) > 0 {
			if report.Lint == nil {
				report.Lint = make(map[string][]string)
			}
			report.Lint[s.Key] = problems
			continue
		}
		report.Valid = append(report.Valid, s.Key)
	}
	return report
}

func printValidationReport(p *printer, r validationReport) {
	for _, key := range r.Valid {
		p.ok(key)
	}
	for _, key := range slices.Sorted(maps.Keys(r.Lint)) {
		p.fail(key + ": " + strings.Join(r.Lint[key], "; "))
	}
	for _, inv := range r.Invalid {
		p.fail(inv.Unit + ": " + inv.Error)
	}
	p.line("")
	p.line("%d valid, %d invalid", len(r.Valid), r.failures())
}

package main

import (
	"fmt"
	"strings"

	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spf13/cobra"
)

const descriptionWidth = 60

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), d.ListStrategies())
			}
			printStrategyTable(newPrinter(cmd.OutOrStdout()), d)
			return nil
		},
	}
}

func printStrategyTable(p *printer, d *dispatch.Dispatcher) {
	strategies := d.Strategies()
	rows := make([][]string, 0, len(strategies))
	for _, s := range strategies {
		tags := make([]string, 0, len(s.Tags))
		for _, t := range s.Tags {
			tags = append(tags, string(t))
		}
		rows = append(rows, []string{s.Key, s.Name, strings.Join(tags, ","), truncate(s.Description, descriptionWidth)})
	}
	p.table([]string{"KEY", "NAME", "TAGS", "DESCRIPTION"}, rows)
}

func newShowCommand(a *app) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show one strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			details, err := d.GetStrategyDetails(args[0])
			if err != nil {
				return err
			}
			template := details.Template
			if !full {
				details.Template = ""
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), details)
			}

			p := newPrinter(cmd.OutOrStdout())
			p.title(details.Name)
			p.field("Key", details.Key)
			p.field("Prompt", details.PromptName)
			p.field("Template tokens", fmt.Sprintf("~%d", tokenCounter.Count(template)))
			p.field("Description", details.Description)
			if len(details.Tags) > 0 {
				tags := make([]string, 0, len(details.Tags))
				for _, t := range details.Tags {
					tags = append(tags, string(t))
				}
				p.field("Tags", strings.Join(tags, ", "))
			}
			if len(details.Examples) > 0 {
				p.field("Examples", "")
				for _, ex := range details.Examples {
					p.line("  - %s", ex)
				}
			}
			p.line("")
			if full {
				p.line("%s", template)
			} else {
				p.line("%s", details.TemplatePreview)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print the whole template instead of a preview")
	return cmd
}

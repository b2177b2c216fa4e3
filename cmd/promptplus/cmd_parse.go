package main

import (
	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spf13/cobra"
)

func newParseCommand(a *app) *cobra.Command {
	var router bool

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Extract the refined prompt from a model's response",
		Long: `Extract the refinement fields from a model's response.

The response is read from the file, or from stdin when the argument is
omitted or "-". Use --router for replies to the router instruction.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := readSource(cmd, path)
			if err != nil {
				return err
			}

			// Parsing needs no catalog.
			d := dispatch.New(nil, a.logger)
			p := newPrinter(cmd.OutOrStdout())

			if router {
				rec := d.ParseRouterResponse(raw)
				if a.jsonOut {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				if rec.Key == "" {
					p.fail("no recommendation found")
					return nil
				}
				p.title(rec.Key)
				if rec.Name != "" {
					p.field("Name", rec.Name)
				}
				if rec.Explanation != "" {
					p.field("Why", rec.Explanation)
				}
				if rec.AlternativeKey != "" {
					p.field("Alternative", rec.AlternativeKey)
				}
				return nil
			}

			out := d.ParseResponse(raw)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if out.Degraded {
				p.fail("partial parse (source: " + out.Source + ")")
			}
			if out.RefinedPrompt != "" {
				p.title("Refined prompt")
				p.line("%s", out.RefinedPrompt)
			}
			if out.InitialPromptEvaluation != "" {
				p.line("")
				p.title("Evaluation")
				p.line("%s", out.InitialPromptEvaluation)
			}
			if out.ExplanationOfRefinements != "" {
				p.line("")
				p.title("Explanation")
				p.line("%s", out.ExplanationOfRefinements)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&router, "router", false, "Parse a reply to the router instruction")
	return cmd
}

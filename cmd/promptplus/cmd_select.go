package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spboyer/promptplus/internal/dispatch"
	"github.com/spf13/cobra"
)

func newSelectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select [prompt...]",
		Short: "Recommend a strategy for a prompt",
		Long: `Recommend a strategy for a prompt using keyword and length heuristics.

The prompt is taken from the arguments, or from stdin when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			d, err := a.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			sel := d.AutoSelect(text)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), sel)
			}

			p := newPrinter(cmd.OutOrStdout())
			p.title(fmt.Sprintf("%s (%s)", sel.RecommendedName, sel.Recommended))
			p.field("Reason", sel.Reason)
			if sel.Alternative != "" {
				p.field("Alternative", fmt.Sprintf("%s (%s)", sel.AlternativeName, sel.Alternative))
			}
			p.field("Words", strconv.Itoa(sel.Features.WordCount))
			p.field("Detected type", string(sel.Features.DetectedType))
			return nil
		},
	}
}

func newCompareCommand(a *app) *cobra.Command {
	var strategies string

	cmd := &cobra.Command{
		Use:   "compare [prompt...]",
		Short: "Score strategies against a prompt",
		Long: `Score strategies against a prompt and rank them.

Without --strategies, the recommended strategy, its alternative and
physics are compared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			d, err := a.dispatcher(cmd.Context())
			if err != nil {
				return err
			}

			var keys []string
			if cmd.Flags().Changed("strategies") {
				keys = dispatch.SplitKeys(strategies)
				if keys == nil {
					keys = []string{}
				}
			}
			res := d.Compare(text, keys)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			p := newPrinter(cmd.OutOrStdout())
			if len(res.Candidates) == 0 {
				p.fail(res.Reasoning)
				return nil
			}
			rows := make([][]string, 0, len(res.Candidates))
			for _, c := range res.Candidates {
				rows = append(rows, []string{
					strconv.Itoa(c.Rank),
					c.Key,
					strconv.Itoa(c.Suitability),
					c.ComplexityLevel,
					strings.Join(c.Strengths, "; "),
				})
			}
			p.table([]string{"RANK", "KEY", "SUITABILITY", "COMPLEXITY", "STRENGTHS"}, rows)
			p.line("")
			p.ok(res.Reasoning)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategies, "strategies", "", "Comma-separated strategy keys to compare")
	return cmd
}

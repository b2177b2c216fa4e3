package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spboyer/promptplus/internal/models"
	"github.com/spboyer/promptplus/internal/tokens"
	"github.com/spboyer/promptplus/internal/wizard"
	"github.com/spf13/cobra"
)

// Test hooks.
var (
	tokenCounter tokens.Counter = tokens.NewEstimatingCounter()

	pickStrategy = func(strategies []models.Strategy, recommended string) (string, error) {
		return wizard.PickStrategy(os.Stdin, os.Stderr, strategies, recommended)
	}
	isInteractive = func(cmd *cobra.Command) bool {
		return isTerminal(os.Stdin) && isTerminal(cmd.OutOrStdout())
	}
)

// refineOutput is the --json shape of refine. Selection is set when the
// strategy was chosen automatically.
type refineOutput struct {
	models.RenderedInstruction
	Selection *models.SelectionResult `json:"selection,omitempty"`
}

func newRefineCommand(a *app) *cobra.Command {
	var (
		strategy        string
		auto            bool
		instructionOnly bool
	)

	cmd := &cobra.Command{
		Use:   "refine [prompt...]",
		Short: "Render a strategy's instruction for a prompt",
		Long: `Fill a strategy's template with a prompt.

The result is an instruction to run with the language model of your choice.
Without --strategy, an interactive picker opens when running in a terminal;
otherwise (or with --auto) the strategy is selected automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if auto && strategy != "" {
				return fmt.Errorf("--auto and --strategy are mutually exclusive")
			}
			text, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			d, err := a.dispatcher(cmd.Context())
			if err != nil {
				return err
			}

			var out refineOutput
			switch {
			case strategy != "":
				out.RenderedInstruction, err = d.Refine(text, strategy)
			case !auto && isInteractive(cmd):
				sel := d.AutoSelect(text)
				var key string
				key, err = pickStrategy(d.Strategies(), sel.Recommended)
				if err != nil {
					return err
				}
				out.RenderedInstruction, err = d.Refine(text, key)
			default:
				var sel models.SelectionResult
				out.RenderedInstruction, sel, err = d.AutoRefine(text)
				out.Selection = &sel
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case a.jsonOut:
				return writeJSON(w, out)
			case instructionOnly:
				_, err := io.WriteString(w, out.Instruction+"\n")
				return err
			}

			p := newPrinter(w)
			p.title(fmt.Sprintf("%s (%s)", out.StrategyName, out.StrategyUsed))
			if out.Selection != nil {
				p.field("Reason", out.Selection.Reason)
			}
			p.line("")
			p.line("%s", out.Instruction)
			p.line("")
			p.field("Tokens", fmt.Sprintf("~%d", tokenCounter.Count(out.Instruction)))
			p.field("Hint", out.UsageHint)
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Strategy key to apply")
	cmd.Flags().BoolVar(&auto, "auto", false, "Select the strategy automatically, never prompt")
	cmd.Flags().BoolVar(&instructionOnly, "instruction-only", false, "Print only the rendered instruction")
	return cmd
}

func newRouterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "router [prompt...]",
		Short: "Render an instruction that asks a model to choose a strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			d, err := a.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			instruction, err := d.RouterPrompt(text)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"initial_prompt": text,
					"instruction":    instruction,
				})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), instruction+"\n")
			return err
		},
	}
}

// Package wizard holds the interactive prompts used by the CLI.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/promptplus/internal/models"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("selection aborted")

// StrategyOptions builds the picker choices. The recommended strategy is
// listed first and labelled; the rest keep catalog order.
func StrategyOptions(strategies []models.Strategy, recommended string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(strategies))
	for _, s := range strategies {
		if s.Key == recommended {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s) - recommended", s.Name, s.Key), s.Key))
		}
	}
	for _, s := range strategies {
		if s.Key != recommended {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", s.Name, s.Key), s.Key))
		}
	}
	return opts
}

// PickStrategy asks the user to choose a strategy, preselecting recommended.
func PickStrategy(in io.Reader, out io.Writer, strategies []models.Strategy, recommended string) (string, error) {
	if len(strategies) == 0 {
		return "", fmt.Errorf("no strategies to choose from")
	}
	choice := recommended

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Refinement strategy").
				Description("The recommended strategy is listed first").
				Options(StrategyOptions(strategies, recommended)...).
				Value(&choice),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("strategy picker failed: %w", err)
	}
	return choice, nil
}

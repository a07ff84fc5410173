package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/strategy"
	"github.com/quillworks/preflight/internal/util"
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "List configured hooks and their execution waves",
	RunE:  runHooks,
}

var hooksStage string

// commandColumnWidth caps the rendered command so multi-tool one-liners do
// not wrap the listing.
const commandColumnWidth = 80

func init() {
	hooksCmd.Flags().StringVar(&hooksStage, "stage", "", "only show one stage (fast or comprehensive)")
	rootCmd.AddCommand(hooksCmd)
}

func runHooks(cmd *cobra.Command, args []string) error {
	stages := hook.Stages()
	if hooksStage != "" {
		stage := hook.Stage(hooksStage)
		if !stage.Valid() {
			return errors.NewConfigError(fmt.Sprintf("unknown stage %q", hooksStage), errors.ErrUnknownStage).
				WithField("stage").WithValue(hooksStage)
		}
		stages = []hook.Stage{stage}
	}

	loader := strategy.NewFileLoader(projectDir(cmd))
	out := cmd.OutOrStdout()

	for _, stage := range stages {
		strat, err := loader.Load(stage)
		if err != nil {
			return err
		}
		if err := printStage(out, strat); err != nil {
			return err
		}
	}
	return nil
}

func printStage(out io.Writer, strat *hook.Strategy) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render(strings.ToUpper(strat.Stage.String())+" STAGE"))
	fmt.Fprintln(out, strings.Repeat("─", 50))

	if len(strat.Hooks) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no hooks configured"))
		return nil
	}

	waves, err := hook.Waves(strat.Hooks)
	if err != nil {
		return err
	}

	for i, wave := range waves {
		fmt.Fprintf(out, "wave %d\n", i+1)
		for _, def := range wave {
			fmt.Fprintf(out, "  %-24s %s\n", def.ID, mutedStyle.Render(util.TruncateString(def.Command, commandColumnWidth)))
			var details []string
			if len(def.DependsOn) > 0 {
				details = append(details, "needs "+strings.Join(def.DependsOn, ", "))
			}
			if def.Timeout > 0 && def.Timeout != hook.DefaultTimeout {
				details = append(details, "timeout "+util.FormatDuration(def.Timeout))
			}
			if len(details) > 0 {
				fmt.Fprintf(out, "  %-24s %s\n", "", mutedStyle.Render(strings.Join(details, ", ")))
			}
		}
	}
	return nil
}

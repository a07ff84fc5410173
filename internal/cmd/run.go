package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/logging"
	"github.com/quillworks/preflight/internal/manager"
	"github.com/quillworks/preflight/internal/util"
	"github.com/quillworks/preflight/internal/watch"
)

// issueLineWidth caps rendered issue lines so one long compiler error
// does not wrap the whole report; issueLineCount caps how many lines a
// single hook contributes.
const (
	issueLineWidth = 120
	issueLineCount = 10
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run quality-check hooks",
	Long: `Run the project's quality-check hooks.

By default both the fast and comprehensive strategies run. Use --fast or
--comprehensive to run a single strategy, or --watch to re-run the fast
strategy whenever project files change.`,
	RunE: runRun,
}

var (
	runFast          bool
	runComprehensive bool
	runWatch         bool
	runJSON          bool
	runVerbose       bool
	runQuiet         bool
)

var errHooksFailed = errors.New("one or more hooks did not pass")

func init() {
	runCmd.Flags().BoolVar(&runFast, "fast", false, "run only the fast strategy")
	runCmd.Flags().BoolVar(&runComprehensive, "comprehensive", false, "run only the comprehensive strategy")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "watch for file changes and re-run the fast strategy")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print results as JSON")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log captured hook output")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress per-hook log lines")

	runCmd.MarkFlagsMutuallyExclusive("fast", "comprehensive")
	runCmd.MarkFlagsMutuallyExclusive("watch", "comprehensive")
	runCmd.MarkFlagsMutuallyExclusive("watch", "json")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	// JSON output must stay machine-readable, so hook logging goes to the
	// log file only.
	m, logger, err := newManager(cmd, runQuiet || runJSON, runVerbose)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer m.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runWatch {
		return watchAndRun(ctx, cmd, m)
	}

	results, err := runOnce(ctx, m)
	if err != nil {
		return err
	}

	summary := m.HookSummary(results)
	if runJSON {
		if err := printRunJSON(cmd.OutOrStdout(), results, summary); err != nil {
			return err
		}
	} else {
		printRunText(cmd.OutOrStdout(), results, summary)
	}

	if summary.Passed != summary.Total {
		return errHooksFailed
	}
	return nil
}

// runOnce executes the strategies selected by the run flags.
func runOnce(ctx context.Context, m *manager.Manager) ([]hook.Result, error) {
	switch {
	case runFast:
		return m.RunFastHooks(ctx)
	case runComprehensive:
		return m.RunComprehensiveHooks(ctx)
	default:
		return m.RunHooks(ctx)
	}
}

// watchAndRun runs the fast strategy once, then again on every file change
// batch until the context is canceled.
func watchAndRun(ctx context.Context, cmd *cobra.Command, m *manager.Manager) error {
	out := cmd.OutOrStdout()

	rerun := func() {
		results, err := m.RunFastHooks(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(out, "run failed: %v\n", err)
			return
		}
		printRunText(out, results, m.HookSummary(results))
	}

	fmt.Fprintln(out, "Watching for changes, press ctrl-c to stop.")
	rerun()

	w, err := watch.New(projectDir(cmd), func(changed []string) {
		fmt.Fprintf(out, "\n%d file(s) changed, re-running fast hooks\n", len(changed))
		rerun()
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	fmt.Fprintln(out, "\nStopped.")
	return nil
}

func printRunText(out io.Writer, results []hook.Result, summary hook.Summary) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("HOOK RESULTS"))
	fmt.Fprintln(out, strings.Repeat("─", 50))

	if len(results) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no hooks configured"))
	}
	for _, res := range results {
		line := fmt.Sprintf("%-28s %s  %s", res.Name, statusBadge(res.Status),
			mutedStyle.Render(util.FormatDuration(res.Duration)))
		if res.CacheHit {
			line += " " + mutedStyle.Render("(cached)")
		}
		fmt.Fprintln(out, line)
		if len(res.IssuesFound) > 0 {
			issues := util.TruncateLines(strings.Join(res.IssuesFound, "\n"), issueLineCount)
			for _, issue := range strings.Split(issues, "\n") {
				fmt.Fprintln(out, "    "+util.TruncateANSI(issue, issueLineWidth))
			}
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("SUMMARY"))
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "Hooks:      %d passed / %d total\n", summary.Passed, summary.Total)
	if summary.Failed > 0 {
		fmt.Fprintf(out, "Failed:     %d\n", summary.Failed)
	}
	if summary.Timeout > 0 {
		fmt.Fprintf(out, "Timed out:  %d\n", summary.Timeout)
	}
	if summary.Errors > 0 {
		fmt.Fprintf(out, "Errors:     %d\n", summary.Errors)
	}
	if summary.CacheHits > 0 {
		fmt.Fprintf(out, "Cache hits: %d\n", summary.CacheHits)
	}
	fmt.Fprintf(out, "Duration:   %s\n", util.FormatDuration(summary.TotalDuration))
}

func printRunJSON(out io.Writer, results []hook.Result, summary hook.Summary) error {
	report := struct {
		Results []hook.Result `json:"results"`
		Summary hook.Summary  `json:"summary"`
	}{Results: results, Summary: summary}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding run report")
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// newManager builds a Manager for a CLI command from the resolved user
// configuration and the --dir flag.
func newManager(cmd *cobra.Command, quiet, verbose bool) (*manager.Manager, *logging.Logger, error) {
	dir := projectDir(cmd)
	userCfg := config.Get()

	logger := logging.NopLogger()
	if userCfg.Logging.Enabled {
		logDir := filepath.Join(userCfg.Paths.ResolveArtifactsDir(dir), "logs")
		fileLogger, err := logging.NewLoggerWithRotation(logDir, userCfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  userCfg.Logging.MaxSizeMB,
			MaxBackups: userCfg.Logging.MaxBackups,
		})
		// An unwritable log directory must not block hook runs.
		if err == nil {
			logger = fileLogger
		}
	}

	m, err := manager.New(
		manager.WithProjectDir(dir),
		manager.WithSettings(config.SettingsFromConfig(userCfg)),
		manager.WithLogger(logger),
		manager.WithQuiet(quiet),
		manager.WithVerbose(verbose),
	)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	return m, logger, nil
}

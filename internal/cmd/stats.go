package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillworks/preflight/internal/cache"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/manager"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show execution mode and cache statistics",
	RunE:  runStats,
}

var statsJSON bool

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	m, logger, err := newManager(cmd, true, false)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer m.Close()

	info := m.ExecutionInfo()
	stats, err := m.OrchestrationStats()
	if err != nil {
		return err
	}

	if statsJSON {
		return printStatsJSON(cmd.OutOrStdout(), info, stats)
	}
	printStatsText(cmd.OutOrStdout(), info, stats)
	return nil
}

func printStatsText(out io.Writer, info manager.Info, stats *cache.Stats) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("EXECUTION"))
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "Executor:         %s\n", info.ExecutorKind)
	fmt.Fprintf(out, "LSP optimization: %s\n", onOff(info.LSPOptimization))
	fmt.Fprintf(out, "Tool proxy:       %s\n", onOff(info.ToolProxy))
	if info.Orchestration {
		fmt.Fprintf(out, "Orchestration:    enabled (%s)\n", info.Mode)
	} else {
		fmt.Fprintln(out, "Orchestration:    disabled")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("CACHE"))
	fmt.Fprintln(out, strings.Repeat("─", 50))
	if stats == nil {
		fmt.Fprintln(out, mutedStyle.Render("orchestration disabled, no cache statistics"))
		return
	}
	fmt.Fprintf(out, "Backend:  %s\n", stats.Backend)
	fmt.Fprintf(out, "Caching:  %s\n", onOff(stats.CachingEnabled))
	fmt.Fprintf(out, "Requests: %d (%d hits, %d misses)\n", stats.TotalRequests, stats.Hits, stats.Misses)
	fmt.Fprintf(out, "Hit rate: %.1f%%\n", stats.HitRate()*100)
	if stats.Entries > 0 {
		fmt.Fprintf(out, "Entries:  %d\n", stats.Entries)
	}
	if stats.Evictions > 0 {
		fmt.Fprintf(out, "Evicted:  %d\n", stats.Evictions)
	}
}

func printStatsJSON(out io.Writer, info manager.Info, stats *cache.Stats) error {
	report := struct {
		Execution manager.Info `json:"execution"`
		Cache     *cache.Stats `json:"cache,omitempty"`
	}{Execution: info, Cache: stats}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding stats report")
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/logging"
)

// maxIssues caps how many output lines a single hook result carries.
const maxIssues = 50

// toolProxyEnv names the wrapper command used when ToolProxy is enabled.
const toolProxyEnv = "PREFLIGHT_TOOL_PROXY"

// Subprocess is the standard executor: each hook's command is parsed with
// shell word splitting rules and run as a subprocess from the project
// directory, sequentially in definition order.
type Subprocess struct {
	dir       string
	quiet     bool
	verbose   bool
	toolProxy bool
	logger    *logging.Logger
}

var _ Executor = (*Subprocess)(nil)

func newSubprocess(cfg Config) *Subprocess {
	return &Subprocess{
		dir:       cfg.Dir,
		quiet:     cfg.Quiet,
		verbose:   cfg.Verbose,
		toolProxy: cfg.ToolProxy,
		logger:    cfg.Logger,
	}
}

// Kind returns KindStandard.
func (e *Subprocess) Kind() Kind { return KindStandard }

// ExecuteStrategy runs the strategy's hooks one at a time in definition
// order. Every hook yields a Result; the error is non-nil only when the
// context ends the run early.
func (e *Subprocess) ExecuteStrategy(ctx context.Context, s *hook.Strategy) ([]hook.Result, error) {
	results := make([]hook.Result, 0, len(s.Hooks))
	for _, def := range s.Hooks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, e.runHook(ctx, def))
	}
	return results, ctx.Err()
}

// runHook executes one hook and classifies the outcome. The hook's wall
// clock budget is enforced with a context deadline; the process is killed
// when it fires.
func (e *Subprocess) runHook(ctx context.Context, def hook.Definition) hook.Result {
	log := e.logger.WithHook(def.ID)
	res := hook.Result{
		ID:    def.ID,
		Name:  def.DisplayName(),
		Stage: def.Stage,
	}

	argv, err := e.argv(def.Command)
	if err != nil {
		res.Status = hook.StatusError
		res.IssuesFound = []string{err.Error()}
		log.Error("hook command invalid", "command", def.Command, "error", err)
		return res
	}

	hookCtx, cancel := context.WithTimeout(ctx, def.EffectiveTimeout())
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(hookCtx, argv[0], argv[1:]...)
	cmd.Dir = e.dir
	cmd.Stdout = &out
	cmd.Stderr = &out

	if !e.quiet {
		log.Info("hook started", "command", def.Command)
	}
	start := time.Now()
	runErr := cmd.Run()
	res.Duration = time.Since(start)
	res.FilesProcessed = e.countFiles(def)

	var exitErr *exec.ExitError
	switch {
	case hookCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		res.Status = hook.StatusTimeout
	case ctx.Err() != nil:
		res.Status = hook.StatusError
	case runErr == nil:
		res.Status = hook.StatusPassed
	case errors.As(runErr, &exitErr):
		res.Status = hook.StatusFailed
	default:
		res.Status = hook.StatusError
	}

	if res.Status != hook.StatusPassed {
		res.IssuesFound = collectIssues(out.String())
		if len(res.IssuesFound) == 0 && runErr != nil {
			res.IssuesFound = []string{runErr.Error()}
		}
	}

	if e.verbose {
		for _, line := range strings.Split(out.String(), "\n") {
			if line = strings.TrimRight(line, "\r"); line != "" {
				log.Debug("hook output", "line", line)
			}
		}
	}
	if !e.quiet {
		log.Info("hook finished", "status", res.Status, "duration", res.Duration)
	}
	return res
}

// argv parses the hook command into an argument vector, prefixing the tool
// proxy wrapper when one is configured.
func (e *Subprocess) argv(command string) ([]string, error) {
	args, err := shellwords.Parse(command)
	if err != nil {
		return nil, errors.Wrap(err, "parse command")
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}

	if e.toolProxy {
		if wrapper := os.Getenv(toolProxyEnv); wrapper != "" {
			wargs, err := shellwords.Parse(wrapper)
			if err != nil {
				return nil, errors.Wrap(err, "parse tool proxy wrapper")
			}
			args = append(wargs, args...)
		}
	}
	return args, nil
}

// countFiles reports how many files match the hook's Files glob.
func (e *Subprocess) countFiles(def hook.Definition) int {
	if def.Files == "" {
		return 0
	}

	pattern := def.Files
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(e.dir, pattern)
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0
	}

	n := 0
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			n++
		}
	}
	return n
}

// collectIssues turns hook output into issue lines: non-empty lines, at
// most maxIssues of them.
func collectIssues(output string) []string {
	var issues []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		issues = append(issues, line)
		if len(issues) == maxIssues {
			break
		}
	}
	return issues
}

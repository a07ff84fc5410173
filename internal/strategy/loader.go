// Package strategy resolves which hooks run for each stage.
//
// The FileLoader reads hook declarations from the project file and falls
// back to built-in defaults for stages the file leaves empty. Loaded
// strategies are validated: IDs are unique, stages are known, and the
// dependency graph is acyclic and closed within the stage.
package strategy

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/hook"
)

// Loader resolves the strategy to execute for a stage.
type Loader interface {
	Load(stage hook.Stage) (*hook.Strategy, error)
}

// hookSpec is one entry of the hooks list in the project file.
// Timeout is in seconds, like cache_ttl in the orchestration section.
type hookSpec struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Command        string   `yaml:"command"`
	Stage          string   `yaml:"stage"`
	TimeoutSeconds int      `yaml:"timeout"`
	DependsOn      []string `yaml:"depends_on"`
	ConfigPath     string   `yaml:"config_path"`
	Files          string   `yaml:"files"`
}

// projectHooks is the hooks section of the project file. Other sections
// (orchestration) are handled by the config package.
type projectHooks struct {
	Hooks []hookSpec `yaml:"hooks"`
}

// FileLoader loads strategies from the project file in a directory.
type FileLoader struct {
	dir string
}

var _ Loader = (*FileLoader)(nil)

// NewFileLoader creates a FileLoader rooted at the project directory.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// Load returns the strategy for stage: the project file's hooks for that
// stage in declaration order, or the built-in defaults when the file
// declares none for it. The returned strategy is validated.
func (l *FileLoader) Load(stage hook.Stage) (*hook.Strategy, error) {
	if !stage.Valid() {
		return nil, errors.NewConfigError("not a known stage", errors.ErrUnknownStage).
			WithField("stage").WithValue(stage.String())
	}

	specs, err := l.readSpecs()
	if err != nil {
		return nil, err
	}

	var defs []hook.Definition
	for _, spec := range specs {
		if spec.Stage != stage.String() {
			continue
		}
		defs = append(defs, hook.Definition{
			ID:         spec.ID,
			Name:       spec.Name,
			Command:    spec.Command,
			Timeout:    time.Duration(spec.TimeoutSeconds) * time.Second,
			DependsOn:  spec.DependsOn,
			ConfigPath: spec.ConfigPath,
			Files:      spec.Files,
			Stage:      stage,
		})
	}
	if len(defs) == 0 {
		defs = Defaults(stage)
	}

	if err := Validate(defs, stage); err != nil {
		return nil, err
	}
	return &hook.Strategy{Stage: stage, Hooks: defs}, nil
}

// readSpecs parses the hooks section of the project file. A missing file
// yields no specs. Every parsed spec must name a known stage, including
// specs for stages other than the one being loaded.
func (l *FileLoader) readSpecs() ([]hookSpec, error) {
	path := filepath.Join(l.dir, config.ProjectFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewConfigError("cannot read project file", err).WithSource(path)
	}

	var pf projectHooks
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.NewConfigError("cannot parse project file", err).WithSource(path)
	}

	for _, spec := range pf.Hooks {
		if !hook.Stage(spec.Stage).Valid() {
			return nil, errors.NewConfigError("hook declares an unknown stage", errors.ErrUnknownStage).
				WithField("stage").WithValue(spec.Stage).WithSource(path)
		}
	}
	return pf.Hooks, nil
}

// Static serves fixed strategies keyed by stage. Embedders that define
// hooks in code use it in place of the project file. Stages without an
// entry resolve to an empty strategy.
type Static map[hook.Stage]*hook.Strategy

var _ Loader = (Static)(nil)

// Load returns the stage's strategy, validated.
func (s Static) Load(stage hook.Stage) (*hook.Strategy, error) {
	if !stage.Valid() {
		return nil, errors.NewConfigError("not a known stage", errors.ErrUnknownStage).
			WithField("stage").WithValue(stage.String())
	}

	st := s[stage]
	if st == nil {
		return &hook.Strategy{Stage: stage}, nil
	}
	if err := Validate(st.Hooks, stage); err != nil {
		return nil, err
	}
	return st, nil
}

// Validate checks a stage's hooks: every hook has an ID and a command and
// belongs to the stage, IDs are unique, and dependencies form an acyclic
// graph within the stage.
func Validate(defs []hook.Definition, stage hook.Stage) error {
	for _, def := range defs {
		switch {
		case def.ID == "":
			return errors.NewConfigError("hook is missing an id", errors.ErrInvalidConfig).
				WithField("id")
		case def.Command == "":
			return errors.NewConfigError("hook is missing a command", errors.ErrInvalidConfig).
				WithField("command").WithValue(def.ID)
		case def.Timeout < 0:
			return errors.NewConfigError("hook timeout cannot be negative", errors.ErrInvalidConfig).
				WithField("timeout").WithValue(def.ID)
		case def.Stage != stage:
			return errors.NewConfigError("hook declared for a different stage", errors.ErrUnknownStage).
				WithField("stage").WithValue(def.ID)
		}
	}

	_, err := hook.Waves(defs)
	return err
}

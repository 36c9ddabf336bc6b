// Package build models the CI build a step runs in: its environment, its
// console, the metadata attached to it and its result. The record lives in a
// build directory so that separate pipeline steps share it.
package build

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/jirabuild/pkg/models"
)

const (
	// RecordFileName holds the persisted build record inside the build directory.
	RecordFileName = "build.yaml"

	// EnvFileName holds the variables contributed to downstream steps.
	EnvFileName = "jira.env"
)

// ErrMetadataAttached is returned when a build already carries JIRA metadata.
var ErrMetadataAttached = errors.New("jira metadata already attached to this build")

// Result is the terminal state of a build.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
)

// Options configure Open.
type Options struct {
	// Job names the job; falls back to JOB_NAME from Environ
	Job string

	// Workspace is the checkout directory; falls back to WORKSPACE, then "."
	Workspace string

	// Environ is the process environment in "KEY=value" form
	Environ []string

	// Log receives console output
	Log io.Writer
}

// Run is one build execution.
type Run struct {
	ID        string                `yaml:"id"`
	Job       string                `yaml:"job"`
	Number    int                   `yaml:"number,omitempty"`
	Workspace string                `yaml:"workspace"`
	Result    Result                `yaml:"result,omitempty"`
	Metadata  *models.BuildMetadata `yaml:"metadata,omitempty"`

	dir      string
	environ  map[string]string
	listener *Listener
}

// Open loads the build record in dir, creating a fresh one when none exists.
// The environment is never persisted; it always comes from opts.
func Open(dir string, opts Options) (*Run, error) {
	environ := parseEnviron(opts.Environ)

	run := &Run{}
	data, err := os.ReadFile(filepath.Join(dir, RecordFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, run); err != nil {
			return nil, fmt.Errorf("decode build record: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		run.ID = environ["BUILD_ID"]
		if run.ID == "" {
			run.ID = uuid.NewString()
		}
		if n, convErr := strconv.Atoi(environ["BUILD_NUMBER"]); convErr == nil {
			run.Number = n
		}
	default:
		return nil, fmt.Errorf("read build record: %w", err)
	}

	run.Job = firstNonEmpty(opts.Job, run.Job, environ["JOB_NAME"])
	run.Workspace = firstNonEmpty(opts.Workspace, run.Workspace, environ["WORKSPACE"], ".")
	run.dir = dir
	run.environ = environ
	run.listener = NewListener(opts.Log)

	return run, nil
}

// New returns an in-memory run that is never persisted unless Save is
// called with a directory set. It is what tests and embedders use.
func New(job string, environ map[string]string, log io.Writer) *Run {
	env := make(map[string]string, len(environ))
	for k, v := range environ {
		env[k] = v
	}
	return &Run{
		ID:        uuid.NewString(),
		Job:       job,
		Workspace: firstNonEmpty(env["WORKSPACE"], "."),
		environ:   env,
		listener:  NewListener(log),
	}
}

// Dir returns the build directory.
func (r *Run) Dir() string {
	return r.dir
}

// Listener returns the build console.
func (r *Run) Listener() *Listener {
	return r.listener
}

// Environment returns the variables visible to the build: the process
// environment, the build's own identity, then attached metadata.
func (r *Run) Environment() map[string]string {
	env := make(map[string]string, len(r.environ)+6)
	for k, v := range r.environ {
		env[k] = v
	}
	env["BUILD_ID"] = r.ID
	if r.Number > 0 {
		env["BUILD_NUMBER"] = strconv.Itoa(r.Number)
	}
	if r.Job != "" {
		env["JOB_NAME"] = r.Job
	}
	env["WORKSPACE"] = r.Workspace
	if r.Metadata != nil {
		for k, v := range r.Metadata.Environment() {
			env[k] = v
		}
	}
	return env
}

// Getenv returns a single variable from Environment.
func (r *Run) Getenv(name string) string {
	return r.Environment()[name]
}

// Expand substitutes ${NAME} and $NAME references against Environment.
func (r *Run) Expand(template string) string {
	return Expand(template, r.Environment())
}

// AddAction attaches JIRA metadata. A build carries at most one.
func (r *Run) AddAction(meta *models.BuildMetadata) error {
	if meta == nil {
		return errors.New("nil metadata")
	}
	if r.Metadata != nil {
		return ErrMetadataAttached
	}
	attached := *meta
	r.Metadata = &attached
	return nil
}

// SetResult records the build result. A failure is never downgraded.
func (r *Run) SetResult(result Result) {
	if r.Result == ResultFailure {
		return
	}
	r.Result = result
}

// Save writes the build record and, when metadata is attached, the env file.
func (r *Run) Save() error {
	if r.dir == "" {
		return errors.New("build has no directory")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode build record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, RecordFileName), data, 0o644); err != nil {
		return fmt.Errorf("write build record: %w", err)
	}

	if r.Metadata == nil {
		return nil
	}
	if err := os.WriteFile(filepath.Join(r.dir, EnvFileName), []byte(FormatEnv(r.Metadata.Environment())), 0o644); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}

// FormatEnv renders variables as shell-sourceable KEY='value' lines in key order.
func FormatEnv(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s='%s'\n", k, strings.ReplaceAll(vars[k], "'", `'\''`))
	}
	return b.String()
}

func parseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

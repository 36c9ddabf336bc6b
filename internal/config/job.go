package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// JobFileName is the per-job configuration file looked up in the workspace.
const JobFileName = ".jirabuild.toml"

// DefaultStrategy is the issue selection strategy used when a job names none.
const DefaultStrategy = "changelog"

// Job is the per-job configuration. Values containing ${VAR} references are
// expanded against the build environment by the step that consumes them.
type Job struct {
	// Name identifies the job; JOB_NAME from the environment wins when set
	Name string `toml:"name"`

	// Site is the JIRA URL the job is bound to. Empty means "the configured site".
	Site string `toml:"site"`

	Selector SelectorConfig `toml:"selector"`
	Release  ReleaseConfig  `toml:"release"`
}

// SelectorConfig chooses and parameterises the issue selection strategy.
type SelectorConfig struct {
	Strategy string   `toml:"strategy"`
	Issues   []string `toml:"issues"`
	JQL      string   `toml:"jql"`
	Pattern  string   `toml:"pattern"`
}

// ReleaseConfig holds the version reconciliation templates.
type ReleaseConfig struct {
	Project string `toml:"project"`
	Version string `toml:"version"`
}

// NewDefaultJob returns the configuration used when no job file exists.
func NewDefaultJob() *Job {
	return &Job{
		Selector: SelectorConfig{Strategy: DefaultStrategy},
	}
}

// LoadJob reads a job file. A missing file yields the defaults.
func LoadJob(path string) (*Job, error) {
	job := NewDefaultJob()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return job, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read job config: %w", err)
	}

	if err := toml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("parse job config %s: %w", path, err)
	}

	if job.Selector.Strategy == "" {
		job.Selector.Strategy = DefaultStrategy
	}

	return job, nil
}

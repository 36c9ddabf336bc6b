package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/config"
	"github.com/danielolaszy/jirabuild/internal/github"
	"github.com/danielolaszy/jirabuild/internal/jira"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/publisher"
	"github.com/danielolaszy/jirabuild/internal/selector"
	"github.com/danielolaszy/jirabuild/internal/tracker"
)

const jobFileName = config.JobFileName

// step is what every build step command works with.
type step struct {
	cfg *config.Config
	job *config.Job
	run *build.Run
}

// openRun opens the build record named by the persistent flags.
func openRun(cmd *cobra.Command) (*build.Run, error) {
	dir, err := cmd.Flags().GetString("build-dir")
	if err != nil {
		return nil, err
	}
	workspace, err := cmd.Flags().GetString("workspace")
	if err != nil {
		return nil, err
	}
	jobName, err := cmd.Flags().GetString("job")
	if err != nil {
		return nil, err
	}

	if dir == "" {
		return nil, fmt.Errorf("build-dir flag is required")
	}

	run, err := build.Open(dir, build.Options{
		Job:       jobName,
		Workspace: workspace,
		Environ:   os.Environ(),
		Log:       cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open build record: %w", err)
	}

	return run, nil
}

// loadStep opens the build and loads the environment and job configuration.
func loadStep(cmd *cobra.Command) (*step, error) {
	run, err := openRun(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetLevel(logging.LogLevel(cfg.LogLevel))

	jobFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if jobFile == "" {
		jobFile = filepath.Join(run.Workspace, jobFileName)
	}

	job, err := config.LoadJob(jobFile)
	if err != nil {
		return nil, err
	}
	if run.Job == "" {
		run.Job = job.Name
	}

	logging.Debug("loaded build step",
		"build", run.ID,
		"job", run.Job,
		"workspace", run.Workspace,
		"job_file", jobFile,
		"strategy", job.Selector.Strategy)

	return &step{cfg: cfg, job: job, run: run}, nil
}

// siteForJob resolves the JIRA site a job publishes to. A job bound to a site
// other than the configured one has no site.
func siteForJob(cfg *config.Config, job *config.Job) publisher.SiteResolver {
	return func(name string) tracker.Site {
		if !cfg.Jira.Configured() {
			logging.Warn("no jira site configured", "job", name)
			return nil
		}

		if job.Site != "" && strings.TrimRight(job.Site, "/") != cfg.Jira.URL {
			logging.Warn("job is bound to a different jira site",
				"job", name,
				"job_site", job.Site,
				"configured_site", cfg.Jira.URL)
			return nil
		}

		client, err := jira.NewClient(cfg.Jira)
		if err != nil {
			logging.Warn("failed to initialize jira client",
				"job", name,
				"error", err)
			return nil
		}
		return client
	}
}

// newSelector builds the job's issue selection strategy. An empty strategy
// overrides nothing.
func newSelector(cfg *config.Config, job *config.Job, strategy, since string) (selector.Selector, error) {
	if strategy == "" {
		strategy = job.Selector.Strategy
	}

	opts := selector.Options{
		Issues:  job.Selector.Issues,
		JQL:     job.Selector.JQL,
		Pattern: job.Selector.Pattern,
		Since:   since,
	}

	if cfg.GitHub.Token != "" {
		githubClient, err := github.NewClient(cfg.GitHub)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize github client: %w", err)
		}
		opts.PullRequests = githubClient
	}

	sel, err := selector.New(strategy, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s selector: %w", strategy, err)
	}
	return sel, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

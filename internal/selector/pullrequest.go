package selector

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// Environment variables identifying the pull request under build.
const (
	EnvChangeID         = "CHANGE_ID"
	EnvGitHubPRNumber   = "GITHUB_PR_NUMBER"
	EnvGitHubRepository = "GITHUB_REPOSITORY"
)

// PullRequestSelector collects keys from the pull request being built: its
// title, body, head branch name and commit messages. Builds that are not for
// a pull request yield an empty set.
type PullRequestSelector struct {
	source  PullRequestSource
	pattern *regexp.Regexp
}

func init() {
	Register("pullrequest", func(opts Options) (Selector, error) {
		return NewPullRequestSelector(opts.PullRequests, opts.Pattern)
	})
}

// NewPullRequestSelector creates a pullrequest strategy.
func NewPullRequestSelector(source PullRequestSource, pattern string) (*PullRequestSelector, error) {
	if source == nil {
		return nil, errors.New("pullrequest strategy requires a GitHub client (set GITHUB_TOKEN)")
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &PullRequestSelector{source: source, pattern: re}, nil
}

// FindIssueIDs implements Selector.
func (s *PullRequestSelector) FindIssueIDs(ctx context.Context, run *build.Run, site tracker.Site) (models.IssueSet, error) {
	ids := make(models.IssueSet)

	raw := run.Getenv(EnvChangeID)
	if raw == "" {
		raw = run.Getenv(EnvGitHubPRNumber)
	}
	if raw == "" {
		logging.Info("build is not for a pull request, no issues selected")
		return ids, nil
	}

	number, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid pull request number %q: %w", raw, err)
	}

	repository := run.Getenv(EnvGitHubRepository)
	if repository == "" {
		return nil, fmt.Errorf("%s must be set to select issues from pull request #%d", EnvGitHubRepository, number)
	}

	pr, err := s.source.GetPullRequest(ctx, repository, number)
	if err != nil {
		return nil, err
	}

	for _, text := range append([]string{pr.Title, pr.Body, pr.HeadRef}, pr.CommitMessages...) {
		extractIssueIDs(ids, s.pattern, text)
	}

	return ids, nil
}

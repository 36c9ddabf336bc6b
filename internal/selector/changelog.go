package selector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// MaxChangelogCommits bounds how far back a changelog walk goes.
const MaxChangelogCommits = 1000

// Environment variables naming the commit the previous build ran on.
const (
	EnvPreviousSuccessfulCommit = "GIT_PREVIOUS_SUCCESSFUL_COMMIT"
	EnvPreviousCommit           = "GIT_PREVIOUS_COMMIT"
)

// ChangelogSelector scans the commit messages of the build's changelog: the
// commits reachable from HEAD but not from the previous build's commit. With
// no previous build only HEAD is scanned.
type ChangelogSelector struct {
	pattern *regexp.Regexp
	since   string
}

func init() {
	Register("changelog", func(opts Options) (Selector, error) {
		return NewChangelogSelector(opts.Pattern, opts.Since)
	})
}

// NewChangelogSelector creates a changelog strategy. since may be empty.
func NewChangelogSelector(pattern, since string) (*ChangelogSelector, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &ChangelogSelector{pattern: re, since: since}, nil
}

// FindIssueIDs implements Selector.
func (s *ChangelogSelector) FindIssueIDs(ctx context.Context, run *build.Run, site tracker.Site) (models.IssueSet, error) {
	repo, err := git.PlainOpenWithOptions(run.Workspace, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository %s: %w", run.Workspace, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	messages, err := s.changelog(ctx, repo, head.Hash(), s.previousRevision(run))
	if err != nil {
		return nil, err
	}

	ids := make(models.IssueSet)
	for _, message := range messages {
		extractIssueIDs(ids, s.pattern, message)
	}

	logging.Debug("scanned changelog",
		"workspace", run.Workspace,
		"commits", len(messages),
		"issues", ids.Len())

	return ids, nil
}

func (s *ChangelogSelector) previousRevision(run *build.Run) string {
	if s.since != "" {
		return s.since
	}
	if rev := run.Getenv(EnvPreviousSuccessfulCommit); rev != "" {
		return rev
	}
	return run.Getenv(EnvPreviousCommit)
}

// changelog returns the messages of commits in (since, head].
func (s *ChangelogSelector) changelog(ctx context.Context, repo *git.Repository, head plumbing.Hash, since string) ([]string, error) {
	if since == "" {
		commit, err := repo.CommitObject(head)
		if err != nil {
			return nil, fmt.Errorf("read HEAD commit: %w", err)
		}
		return []string{commit.Message}, nil
	}

	stop, err := repo.ResolveRevision(plumbing.Revision(since))
	if err != nil {
		logging.Warn("previous build revision not found, scanning HEAD only",
			"revision", since,
			"error", err)
		return s.changelog(ctx, repo, head, "")
	}

	// Every commit reachable from stop was already built. The walk from HEAD
	// is pruned there, so side branches merged since are still scanned.
	built, err := reachable(ctx, repo, *stop)
	if err != nil {
		return nil, err
	}

	headCommit, err := repo.CommitObject(head)
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}

	iter := object.NewCommitPreorderIter(headCommit, built, nil)
	defer iter.Close()

	var messages []string
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(messages) >= MaxChangelogCommits {
			logging.Warn("changelog truncated", "limit", MaxChangelogCommits)
			return storer.ErrStop
		}
		messages = append(messages, c.Message)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commits: %w", err)
	}

	return messages, nil
}

// reachable returns every commit reachable from from. It is not capped: a
// partial set would let already built history into the changelog.
func reachable(ctx context.Context, repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("walk previous build history: %w", err)
	}
	defer iter.Close()

	seen := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk previous build history: %w", err)
	}
	return seen, nil
}

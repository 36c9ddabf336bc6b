// Package selector resolves the JIRA issues a build relates to.
//
// Strategies are registered by name and chosen by job configuration. All of
// them are read-only queries: they inspect the build and its sources but
// never modify the build record.
package selector

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/github"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// DefaultIssuePattern matches JIRA keys in free text. The trailing group
// keeps version-like text such as "ABC-1.2" from matching.
const DefaultIssuePattern = `([a-zA-Z][a-zA-Z0-9_]+-[1-9][0-9]*)([^.]|\.[^0-9]|\.$|$)`

// Selector finds the issues relevant to a build.
type Selector interface {
	// FindIssueIDs returns the build's issues. An empty set is a valid result.
	FindIssueIDs(ctx context.Context, run *build.Run, site tracker.Site) (models.IssueSet, error)
}

// PullRequestSource fetches pull request text. *github.Client satisfies it.
type PullRequestSource interface {
	GetPullRequest(ctx context.Context, repository string, number int) (*github.PullRequest, error)
}

// Options parameterise strategies. Each strategy reads only the fields it needs.
type Options struct {
	// Issues lists explicit issue keys (explicit strategy)
	Issues []string

	// JQL is the query template (jql strategy)
	JQL string

	// Pattern overrides DefaultIssuePattern (changelog and pullrequest strategies)
	Pattern string

	// Since is the revision of the previous build (changelog strategy)
	Since string

	// PullRequests is the GitHub source (pullrequest strategy)
	PullRequests PullRequestSource
}

// Factory builds a strategy from options.
type Factory func(opts Options) (Selector, error)

var (
	registry     = make(map[string]Factory)
	registryLock sync.RWMutex
)

// Register adds a strategy factory to the registry
func Register(name string, factory Factory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[name] = factory
}

// New builds the strategy registered under name.
func New(name string, opts Options) (Selector, error) {
	registryLock.RLock()
	factory, ok := registry[name]
	registryLock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown issue selection strategy %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(opts)
}

// Names returns all registered strategy names, sorted
func Names() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the strategy used when a job does not choose one.
func Default() Selector {
	return &ChangelogSelector{pattern: regexp.MustCompile(DefaultIssuePattern)}
}

// compilePattern returns the issue pattern, falling back to the default.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = DefaultIssuePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid issue pattern %q: %w", pattern, err)
	}
	return re, nil
}

// extractIssueIDs adds every key found in text to ids. The first capture
// group is the key when the pattern has one, otherwise the whole match.
// Keys are upper-cased.
func extractIssueIDs(ids models.IssueSet, pattern *regexp.Regexp, text string) {
	for _, match := range pattern.FindAllStringSubmatch(text, -1) {
		key := match[0]
		if len(match) > 1 && match[1] != "" {
			key = match[1]
		}
		ids.Add(models.IssueID(strings.ToUpper(key)))
	}
}

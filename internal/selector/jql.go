package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// JQLSelector asks the JIRA site for the issues matching a query.
type JQLSelector struct {
	query string
}

func init() {
	Register("jql", func(opts Options) (Selector, error) {
		return NewJQLSelector(opts.JQL)
	})
}

// NewJQLSelector creates a jql strategy. The query may reference build variables.
func NewJQLSelector(query string) (*JQLSelector, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("jql strategy requires a query")
	}
	return &JQLSelector{query: query}, nil
}

// FindIssueIDs implements Selector.
func (s *JQLSelector) FindIssueIDs(ctx context.Context, run *build.Run, site tracker.Site) (models.IssueSet, error) {
	query := strings.TrimSpace(run.Expand(s.query))
	if query == "" {
		return nil, fmt.Errorf("jql query %q is empty after expansion", s.query)
	}

	logging.Debug("selecting issues by jql", "jql", query, "site", site.Name())

	keys, err := site.SearchIssues(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	return models.NewIssueSet(keys...), nil
}

package selector

import (
	"context"
	"strings"
	"unicode"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// ExplicitSelector returns a configured list of issue keys. Entries may
// reference build variables and may hold several comma or space separated
// keys, so "${TICKETS}" works for parameterised builds.
type ExplicitSelector struct {
	issues []string
}

func init() {
	Register("explicit", func(opts Options) (Selector, error) {
		return NewExplicitSelector(opts.Issues), nil
	})
}

// NewExplicitSelector creates an explicit strategy.
func NewExplicitSelector(issues []string) *ExplicitSelector {
	return &ExplicitSelector{issues: append([]string(nil), issues...)}
}

// FindIssueIDs implements Selector.
func (s *ExplicitSelector) FindIssueIDs(ctx context.Context, run *build.Run, site tracker.Site) (models.IssueSet, error) {
	ids := make(models.IssueSet)
	for _, entry := range s.issues {
		fields := strings.FieldsFunc(run.Expand(entry), func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		for _, key := range fields {
			ids.Add(models.IssueID(key))
		}
	}
	return ids, nil
}

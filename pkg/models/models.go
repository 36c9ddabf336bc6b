// Package models defines data structures shared across the application.
package models

import (
	"sort"
	"strings"
)

// IssuesVariable is the environment variable downstream build steps read
// to learn which JIRA issues a build relates to.
const IssuesVariable = "JIRA_ISSUES"

// SiteVariable is the environment variable holding the identity of the
// JIRA site the issues were resolved against.
const SiteVariable = "JIRA_URL"

// IssueID is a JIRA issue key such as "ABC-123".
type IssueID string

// IssueSet is a set of issue keys. Iteration order is not significant.
type IssueSet map[IssueID]struct{}

// NewIssueSet returns a set holding the given ids.
func NewIssueSet(ids ...IssueID) IssueSet {
	s := make(IssueSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set. Empty ids are ignored.
func (s IssueSet) Add(id IssueID) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Contains reports whether id is a member of the set.
func (s IssueSet) Contains(id IssueID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of issues in the set.
func (s IssueSet) Len() int {
	return len(s)
}

// IDs returns the members of the set in no particular order.
func (s IssueSet) IDs() []IssueID {
	ids := make([]IssueID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// Sorted returns the members of the set in lexical order.
func (s IssueSet) Sorted() []IssueID {
	ids := s.IDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Join returns the comma-joined representation published as JIRA_ISSUES.
func (s IssueSet) Join() string {
	parts := make([]string, 0, len(s))
	for id := range s {
		parts = append(parts, string(id))
	}
	return strings.Join(parts, ",")
}

// Equal reports whether both sets hold exactly the same issues.
func (s IssueSet) Equal(other IssueSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// ParseIssueSet is the inverse of IssueSet.Join. Surrounding whitespace and
// empty entries are dropped.
func ParseIssueSet(list string) IssueSet {
	s := make(IssueSet)
	for _, part := range strings.Split(list, ",") {
		s.Add(IssueID(strings.TrimSpace(part)))
	}
	return s
}

// BuildMetadata is attached to a build record once issues have been
// collected. It is the single source of truth for downstream steps.
type BuildMetadata struct {
	// IssuesList is the comma-joined issue keys (see IssueSet.Join)
	IssuesList string `yaml:"issues"`

	// SiteName identifies the JIRA site the issues belong to
	SiteName string `yaml:"site"`
}

// Environment returns the variables the metadata contributes to the build.
func (m *BuildMetadata) Environment() map[string]string {
	return map[string]string{
		IssuesVariable: m.IssuesList,
		SiteVariable:   m.SiteName,
	}
}

// Issues parses IssuesList back into a set.
func (m *BuildMetadata) Issues() IssueSet {
	return ParseIssueSet(m.IssuesList)
}

// Version represents a JIRA project version (release).
type Version struct {
	// ID is the JIRA identifier of the version (e.g., "10042")
	ID string

	// Name is the version name (e.g., "1.0")
	Name string

	// Released indicates whether the version has been marked released
	Released bool

	// Archived indicates whether the version has been archived
	Archived bool

	// ReleaseDate is the release date in YYYY-MM-DD form, if set
	ReleaseDate string
}

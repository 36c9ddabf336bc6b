// Package trackertest provides test doubles for tracker.Site.
package trackertest

import (
	"context"
	"errors"

	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

var _ tracker.Site = (*MockSite)(nil)

// ReleaseCall records one invocation of MockSite.ReleaseVersion.
type ReleaseCall struct {
	ProjectKey  string
	VersionName string
}

// MockSite is a tracker.Site test double driven by function fields.
type MockSite struct {
	SiteName           string
	GetVersionsFunc    func(ctx context.Context, projectKey string) ([]models.Version, error)
	ReleaseVersionErr  error
	ReleaseVersionFunc func(ctx context.Context, projectKey, versionName string) error
	SearchIssuesFunc   func(ctx context.Context, jql string) ([]models.IssueID, error)

	// VersionRequests lists the project keys passed to GetVersions
	VersionRequests []string

	// Releases lists every ReleaseVersion call in order
	Releases []ReleaseCall
}

// Name implements tracker.Site.
func (m *MockSite) Name() string {
	return m.SiteName
}

// GetVersions implements tracker.Site.
func (m *MockSite) GetVersions(ctx context.Context, projectKey string) ([]models.Version, error) {
	m.VersionRequests = append(m.VersionRequests, projectKey)
	if m.GetVersionsFunc != nil {
		return m.GetVersionsFunc(ctx, projectKey)
	}
	return nil, nil
}

// ReleaseVersion implements tracker.Site.
func (m *MockSite) ReleaseVersion(ctx context.Context, projectKey, versionName string) error {
	m.Releases = append(m.Releases, ReleaseCall{ProjectKey: projectKey, VersionName: versionName})
	if m.ReleaseVersionFunc != nil {
		return m.ReleaseVersionFunc(ctx, projectKey, versionName)
	}
	return m.ReleaseVersionErr
}

// SearchIssues implements tracker.Site.
func (m *MockSite) SearchIssues(ctx context.Context, jql string) ([]models.IssueID, error) {
	if m.SearchIssuesFunc != nil {
		return m.SearchIssuesFunc(ctx, jql)
	}
	return nil, errors.New("SearchIssues not implemented")
}

// NetworkCalls reports how many collaborator calls touched the site.
func (m *MockSite) NetworkCalls() int {
	return len(m.VersionRequests) + len(m.Releases)
}

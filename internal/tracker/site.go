// Package tracker defines the contract between the build steps and a JIRA site.
package tracker

import (
	"context"

	"github.com/danielolaszy/jirabuild/pkg/models"
)

// Site is a configured connection to one JIRA instance. Network, auth and
// timeouts are entirely the implementation's concern.
type Site interface {
	// Name returns the identity of the site, usually its URL.
	Name() string

	// GetVersions returns a fresh snapshot of the project's versions.
	GetVersions(ctx context.Context, projectKey string) ([]models.Version, error)

	// ReleaseVersion marks the named version of the project as released.
	// It fails when the site cannot resolve the name to exactly one version.
	ReleaseVersion(ctx context.Context, projectKey, versionName string) error

	// SearchIssues returns the keys of all issues matching a JQL query.
	SearchIssues(ctx context.Context, jql string) ([]models.IssueID, error)
}

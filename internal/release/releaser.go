// Package release marks a JIRA version released once a build has shipped it.
package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// notSet stands in for a release name that was never expanded.
const notSet = "NOT_SET"

// Releaser reconciles a named version with its desired released state.
// It never creates versions; it only transitions an existing one.
type Releaser struct{}

// NewReleaser returns a Releaser.
func NewReleaser() *Releaser {
	return &Releaser{}
}

// Perform releases the version named by releaseExpr in the project named by
// projectKeyExpr, both expanded against the build environment. It reports
// failure through its return value and the build result, never by error.
func (r *Releaser) Perform(ctx context.Context, site tracker.Site, projectKeyExpr, releaseExpr string, run *build.Run) bool {
	realRelease := notSet
	realProjectKey := ""

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()

		realRelease = run.Expand(releaseExpr)
		realProjectKey = run.Expand(projectKeyExpr)
		return reconcile(ctx, site, realProjectKey, realRelease, run.Listener())
	}()
	if err == nil {
		return true
	}

	console := run.Listener()
	detail := console.FatalError("Unable to release jira version %s/%s: %v", realRelease, realProjectKey, err)
	fmt.Fprintf(detail, "%+v\n", err)

	logging.Fatal("unable to release jira version",
		"release", realRelease,
		"project", realProjectKey,
		"job", run.Job,
		"build", run.ID,
		"error", err)

	run.SetResult(build.ResultFailure)
	return false
}

func reconcile(ctx context.Context, site tracker.Site, projectKey, release string, console *build.Listener) error {
	if strings.TrimSpace(release) == "" {
		return &models.ValidationError{Field: "release", Reason: "release is empty"}
	}
	if strings.TrimSpace(projectKey) == "" {
		return &models.ValidationError{Field: "project", Reason: "no project specified"}
	}
	if site == nil {
		return &models.ConfigurationError{Reason: "no JIRA site configured"}
	}

	versions, err := site.GetVersions(ctx, projectKey)
	if err != nil {
		return &models.TransportError{Op: "get versions", Err: err}
	}

	matches := matchingVersions(versions, release)
	if len(matches) == 1 && matches[0].Released {
		console.Printf("JIRA version %s in project %s is already released", release, projectKey)
		logging.Info("version already released", "project", projectKey, "release", release)
		return nil
	}

	// Ambiguous and unknown names are left to the site to reject
	logging.Debug("releasing version",
		"project", projectKey,
		"release", release,
		"matches", len(matches))
	console.Printf("Marking JIRA version %s in project %s as released", release, projectKey)

	if err := site.ReleaseVersion(ctx, projectKey, release); err != nil {
		return &models.TransportError{Op: "release version", Err: err}
	}

	logging.Info("version released", "project", projectKey, "release", release, "site", site.Name())
	return nil
}

// matchingVersions filters versions by exact, case-sensitive name.
func matchingVersions(versions []models.Version, name string) []models.Version {
	var matches []models.Version
	for _, v := range versions {
		if v.Name == name {
			matches = append(matches, v)
		}
	}
	return matches
}

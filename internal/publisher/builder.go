// Package publisher attaches the issues a build relates to as build metadata,
// exposing them to later steps as JIRA_ISSUES.
package publisher

import (
	"context"
	"fmt"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/selector"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// SiteResolver returns the JIRA site configured for a job, or nil.
type SiteResolver func(job string) tracker.Site

// Builder collects a build's issues and publishes them.
type Builder struct {
	selector   selector.Selector
	siteForJob SiteResolver
}

// NewBuilder returns a Builder. A nil selector means the default strategy.
func NewBuilder(sel selector.Selector, siteForJob SiteResolver) *Builder {
	if sel == nil {
		sel = selector.Default()
	}
	return &Builder{
		selector:   sel,
		siteForJob: siteForJob,
	}
}

// Selector returns the issue selection strategy in use.
func (b *Builder) Selector() selector.Selector {
	return b.selector
}

func (b *Builder) site(job string) tracker.Site {
	if b.siteForJob == nil {
		return nil
	}
	return b.siteForJob(job)
}

// NoSiteError reports that job has no JIRA site to publish to.
func NoSiteError(job string) error {
	return &models.ConfigurationError{
		Job:    job,
		Reason: "no JIRA site configured for this job",
	}
}

// Perform resolves the build's issues and attaches them to run. Nothing is
// attached unless every earlier step succeeded; any error must abort the
// build step.
func (b *Builder) Perform(ctx context.Context, run *build.Run) (*models.BuildMetadata, error) {
	site := b.site(run.Job)
	if site == nil {
		return nil, NoSiteError(run.Job)
	}

	ids, err := b.selector.FindIssueIDs(ctx, run, site)
	if err != nil {
		return nil, fmt.Errorf("select issues: %w", err)
	}

	// Joined once so the logged value is exactly the attached one
	idList := ids.Join()

	run.Listener().Printf("Updating %s to %s", models.IssuesVariable, idList)
	logging.Info("updating build environment",
		"variable", models.IssuesVariable,
		"issues", idList,
		"site", site.Name(),
		"build", run.ID)

	meta := &models.BuildMetadata{
		IssuesList: idList,
		SiteName:   site.Name(),
	}
	if err := run.AddAction(meta); err != nil {
		return nil, fmt.Errorf("attach issues to build %s: %w", run.ID, err)
	}

	return meta, nil
}

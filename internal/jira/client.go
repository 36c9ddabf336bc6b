// Package jira implements tracker.Site on top of the JIRA REST API.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/jirabuild/internal/config"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// releaseDateLayout is the date format JIRA expects for releaseDate.
const releaseDateLayout = "2006-01-02"

// searchPageSize is the number of issues requested per JQL page.
const searchPageSize = 100

var _ tracker.Site = (*Client)(nil)

// Client handles interactions with the JIRA API
type Client struct {
	client *jira.Client
	url    string
	now    func() time.Time
}

// NewClient creates a basic-auth JIRA client for the configured site.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if err := config.ValidateJiraConfig(&config.Config{Jira: cfg}); err != nil {
		return nil, err
	}

	logging.Debug("jira configuration",
		"url", cfg.URL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token))

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	return newClient(tp.Client(), cfg.URL)
}

func newClient(httpClient *http.Client, url string) (*Client, error) {
	client, err := jira.NewClient(httpClient, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Client{
		client: client,
		url:    url,
		now:    time.Now,
	}, nil
}

// Name returns the site URL, which is what builds publish as JIRA_URL.
func (c *Client) Name() string {
	return c.url
}

// GetVersions returns every version of the project, in JIRA's order.
func (c *Client) GetVersions(ctx context.Context, projectKey string) ([]models.Version, error) {
	if c.client == nil {
		return nil, fmt.Errorf("JIRA client not initialized")
	}

	project, resp, err := c.client.Project.GetWithContext(ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w (status: %d)", projectKey, err, statusCode(resp))
	}

	versions := make([]models.Version, 0, len(project.Versions))
	for _, v := range project.Versions {
		versions = append(versions, models.Version{
			ID:          v.ID,
			Name:        v.Name,
			Released:    v.Released != nil && *v.Released,
			Archived:    v.Archived != nil && *v.Archived,
			ReleaseDate: v.ReleaseDate,
		})
	}

	logging.Debug("fetched project versions",
		"project", projectKey,
		"count", len(versions))

	return versions, nil
}

// ReleaseVersion marks the version with exactly versionName as released
// today. The name must identify a single version of the project.
func (c *Client) ReleaseVersion(ctx context.Context, projectKey, versionName string) error {
	versions, err := c.GetVersions(ctx, projectKey)
	if err != nil {
		return err
	}

	var matches []models.Version
	for _, v := range versions {
		if v.Name == versionName {
			matches = append(matches, v)
		}
	}

	switch len(matches) {
	case 0:
		return fmt.Errorf("no version named %q in project %s", versionName, projectKey)
	case 1:
	default:
		return fmt.Errorf("ambiguous version name %q in project %s: %d versions share it", versionName, projectKey, len(matches))
	}

	released := true
	update := &jira.Version{
		ID:          matches[0].ID,
		Released:    &released,
		ReleaseDate: c.now().Format(releaseDateLayout),
	}

	if _, resp, err := c.client.Version.UpdateWithContext(ctx, update); err != nil {
		return fmt.Errorf("failed to release version %s of %s: %w (status: %d)", versionName, projectKey, err, statusCode(resp))
	}

	logging.Info("released jira version",
		"project", projectKey,
		"version", versionName,
		"version_id", matches[0].ID,
		"release_date", update.ReleaseDate)

	return nil
}

// SearchIssues runs a JQL query and returns the keys of every matching issue.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]models.IssueID, error) {
	if c.client == nil {
		return nil, fmt.Errorf("JIRA client not initialized")
	}

	var keys []models.IssueID
	opts := &jira.SearchOptions{
		StartAt:    0,
		MaxResults: searchPageSize,
		Fields:     []string{"key"},
	}

	for {
		issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search JIRA issues: %w (status: %d)", err, statusCode(resp))
		}

		for _, issue := range issues {
			keys = append(keys, models.IssueID(issue.Key))
		}

		opts.StartAt += len(issues)
		if len(issues) == 0 || resp == nil || opts.StartAt >= resp.Total {
			break
		}
	}

	logging.Debug("jql search complete",
		"jql", jql,
		"count", len(keys))

	return keys, nil
}

// statusCode tolerates the nil response go-jira returns on transport errors.
func statusCode(resp *jira.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

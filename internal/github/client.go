// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/jirabuild/internal/config"
	"github.com/danielolaszy/jirabuild/internal/logging"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
}

// PullRequest holds the pull request text that may reference JIRA issues.
type PullRequest struct {
	Number         int
	Title          string
	Body           string
	HeadRef        string
	CommitMessages []string
}

// apiURL returns the REST endpoint for a GitHub or GitHub Enterprise domain.
func apiURL(domain string) string {
	if domain == "" || domain == "github.com" {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// NewClient creates a new GitHub API client from configuration. It does not
// contact GitHub; authentication problems surface on the first request.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	endpoint := apiURL(cfg.Domain)

	logging.Debug("github configuration",
		"domain", cfg.Domain,
		"api_url", endpoint,
		"token", logging.MaskSensitive(cfg.Token))

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)
	if err := setBaseURL(client, endpoint); err != nil {
		return nil, err
	}

	return &Client{client: client}, nil
}

func setBaseURL(client *github.Client, endpoint string) error {
	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid github api url: %w", err)
	}
	client.BaseURL = parsedURL
	client.UploadURL = parsedURL
	return nil
}

// splitRepository parses "owner/repo".
func splitRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// GetPullRequest fetches a pull request together with all of its commit
// messages. The repository should be in the format "owner/repo".
func (c *Client) GetPullRequest(ctx context.Context, repository string, number int) (*PullRequest, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		logging.Error("failed to get pull request",
			"repository", repository,
			"number", number,
			"error", err)
		return nil, fmt.Errorf("failed to get pull request %s#%d: %w", repository, number, err)
	}

	result := &PullRequest{
		Number:  number,
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		HeadRef: pr.GetHead().GetRef(),
	}

	opts := &github.ListOptions{PerPage: 100}
	for {
		commits, resp, err := c.client.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits of pull request %s#%d: %w", repository, number, err)
		}

		for _, commit := range commits {
			result.CommitMessages = append(result.CommitMessages, commit.GetCommit().GetMessage())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logging.Debug("fetched pull request",
		"repository", repository,
		"number", number,
		"commits", len(result.CommitMessages))

	return result, nil
}

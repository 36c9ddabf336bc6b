// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub   GitHubConfig
	Jira     JiraConfig
	LogLevel string
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
}

// Configured reports whether a JIRA site has been set up at all.
func (j JiraConfig) Configured() bool {
	return j.URL != ""
}

// LoadConfig initializes and loads configuration from environment variables.
// Credentials are not validated here; callers validate the sections they use.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, env := range map[string]string{
		"github.token":  "GITHUB_TOKEN",
		"github.domain": "GITHUB_DOMAIN",
		"jira.url":      "JIRA_URL",
		"jira.username": "JIRA_USERNAME",
		"jira.token":    "JIRA_TOKEN",
		"log.level":     "LOG_LEVEL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetDefault("github.domain", "github.com")
	v.SetDefault("log.level", "info")

	config := &Config{
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		Jira: JiraConfig{
			URL:      strings.TrimRight(v.GetString("jira.url"), "/"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
		},
		LogLevel: v.GetString("log.level"),
	}

	// An explicitly empty GITHUB_DOMAIN still means github.com
	if config.GitHub.Domain == "" {
		config.GitHub.Domain = "github.com"
	}

	return config, nil
}

// ValidateGitHubConfig validates GitHub-specific configuration.
func ValidateGitHubConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return fmt.Errorf("missing required environment variables: [GITHUB_TOKEN]")
	}
	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// Package cmd provides the command-line interface for the jirabuild CLI tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jirabuild",
	Short: "Jirabuild connects CI builds with JIRA",
	Long: `Jirabuild is a CLI tool that connects continuous-integration builds with JIRA.
It discovers which JIRA issues a build relates to, publishes them to later build
steps as JIRA_ISSUES, and marks JIRA versions released once a build ships them.

Build state is kept in a build directory shared by every step of one build.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().StringP("build-dir", "d", ".jirabuild", "Directory holding the build record shared by all steps")
	rootCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace checkout (defaults to $WORKSPACE, then the current directory)")
	rootCmd.PersistentFlags().StringP("job", "j", "", "Job name (defaults to $JOB_NAME)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Job configuration file (defaults to <workspace>/"+jobFileName+")")

	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(strategiesCmd)
}

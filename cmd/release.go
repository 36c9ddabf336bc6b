package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/release"
)

// releaseCmd marks a JIRA version released after a successful build.
var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Mark a JIRA version as released",
	Long: `Mark a JIRA version as released once the build has shipped it.

The project key and version name come from the [release] section of the job
configuration unless given as flags. Both may reference build variables, e.g.
'${BUILD_NUMBER}', which are expanded before use.

A version that is already released is left alone. On any failure the build is
marked FAILURE and the command exits non-zero.

Example:
  jirabuild release -p ABC --version 'api-${BUILD_NUMBER}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := cmd.Flags().GetString("project")
		if err != nil {
			return err
		}
		version, err := cmd.Flags().GetString("version")
		if err != nil {
			return err
		}

		s, err := loadStep(cmd)
		if err != nil {
			return err
		}

		project = firstNonEmpty(project, s.job.Release.Project)
		version = firstNonEmpty(version, s.job.Release.Version)

		site := siteForJob(s.cfg, s.job)(s.run.Job)
		ok := release.NewReleaser().Perform(cmd.Context(), site, project, version, s.run)

		if err := s.run.Save(); err != nil {
			logging.Error("failed to save build record", "error", err)
			if ok {
				return fmt.Errorf("failed to save build record: %w", err)
			}
		}

		if !ok {
			return fmt.Errorf("failed to release jira version %s/%s", version, project)
		}
		return nil
	},
}

func init() {
	releaseCmd.Flags().StringP("project", "p", "", "JIRA project key (overrides the job configuration)")
	releaseCmd.Flags().String("version", "", "JIRA version name (overrides the job configuration)")
}

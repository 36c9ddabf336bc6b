package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/logging"
	"github.com/danielolaszy/jirabuild/internal/publisher"
	"github.com/danielolaszy/jirabuild/internal/tracker"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// issuesCmd finds the JIRA issues a build relates to and publishes them as
// JIRA_ISSUES for later steps.
var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Publish the JIRA issues a build relates to",
	Long: `Find the JIRA issues related to the current build and attach them to the build.

The issues are found with the job's selection strategy (see 'jirabuild strategies'):
- changelog: issue keys in commit messages since the previous build (default)
- explicit: the keys listed in the job configuration
- jql: the result of a JQL query against the JIRA site
- pullrequest: issue keys in the pull request being built

Once attached, later steps see them as JIRA_ISSUES (a comma-separated list) and the
site as JIRA_URL, via 'jirabuild env' or the env file in the build directory.

Example:
  jirabuild issues -d .jirabuild --strategy jql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := cmd.Flags().GetString("strategy")
		if err != nil {
			return err
		}
		since, err := cmd.Flags().GetString("since")
		if err != nil {
			return err
		}

		s, err := loadStep(cmd)
		if err != nil {
			return err
		}

		meta, err := publish(cmd.Context(), s, strategy, since)
		if err != nil {
			s.run.SetResult(build.ResultFailure)
			if saveErr := s.run.Save(); saveErr != nil {
				logging.Error("failed to save build record", "error", saveErr)
			}
			return fmt.Errorf("failed to publish jira issues: %w", err)
		}

		if err := s.run.Save(); err != nil {
			return fmt.Errorf("failed to save build record: %w", err)
		}

		logging.Info("published jira issues",
			"build", s.run.ID,
			"job", s.run.Job,
			"issues", meta.IssuesList,
			"site", meta.SiteName)

		return nil
	},
}

// publish resolves the site before the strategy so that a job without a
// site always fails with a configuration error.
func publish(ctx context.Context, s *step, strategy, since string) (*models.BuildMetadata, error) {
	site := siteForJob(s.cfg, s.job)(s.run.Job)
	if site == nil {
		return nil, publisher.NoSiteError(s.run.Job)
	}

	sel, err := newSelector(s.cfg, s.job, strategy, since)
	if err != nil {
		return nil, err
	}

	builder := publisher.NewBuilder(sel, func(string) tracker.Site { return site })
	return builder.Perform(ctx, s.run)
}

func init() {
	issuesCmd.Flags().StringP("strategy", "s", "", "Issue selection strategy (overrides the job configuration)")
	issuesCmd.Flags().String("since", "", "Revision of the previous build (changelog strategy)")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/logging"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the JIRA variables attached to the build",
	Long: `Print the variables 'jirabuild issues' attached to the build, one KEY='value'
per line, ready to be sourced by a shell:

  eval "$(jirabuild env)"

Nothing is printed when no issues have been attached yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := openRun(cmd)
		if err != nil {
			return err
		}

		if run.Metadata == nil {
			logging.Warn("no jira metadata attached to build", "build", run.ID)
			return nil
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), build.FormatEnv(run.Metadata.Environment()))
		return err
	},
}

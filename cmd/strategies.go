package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirabuild/internal/config"
	"github.com/danielolaszy/jirabuild/internal/selector"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available issue selection strategies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range selector.Names() {
			if name == config.DefaultStrategy {
				name += " (default)"
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

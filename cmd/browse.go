package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dochub/dochub/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse registered tables interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		eng, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer eng.Close()

		return tui.Run(ctx, eng)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var dropCmd = &cobra.Command{
	Use:   "drop <letter-type-id>",
	Short: "Drop a letter type's active table",
	Long: `Drop the physical table currently active for a letter type and mark its
registry record inactive. The registry record itself is kept for audit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		eng, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.DropTable(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Dropped active table for letter type %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dropCmd)
}

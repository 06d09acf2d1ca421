package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List registered tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		eng, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer eng.Close()

		tables, err := eng.Tables(ctx)
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			fmt.Println("No tables registered.")
			return nil
		}

		fmt.Printf("%-44s %-16s %8s %-8s %s\n", "TABLE", "LETTER TYPE", "ROWS", "ACTIVE", "CREATED")
		for _, rec := range tables {
			active := "no"
			if rec.IsActive {
				active = "yes"
			}
			fmt.Printf("%-44s %-16s %8d %-8s %s\n",
				rec.TableName, rec.LetterTypeID, rec.TotalRows, active,
				rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

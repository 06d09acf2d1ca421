package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dochub/dochub/internal/engine"
	"github.com/dochub/dochub/internal/ingest"
)

var loadLetterType string
var loadDisplayName string
var loadSourceUploadID string

var loadCmd = &cobra.Command{
	Use:   "load <roster.csv>",
	Short: "Upload a roster CSV into a new table",
	Long: `Parse a roster CSV, infer a schema from its header and rows, create a
fresh table for the letter type and load the rows into it. The letter
type's previous table, if any, is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening roster file: %w", err)
		}
		defer f.Close()

		upload, err := ingest.ParseCSV(f)
		if err != nil {
			return fmt.Errorf("parsing roster: %w", err)
		}

		eng, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer eng.Close()

		rec, err := eng.ProcessUpload(ctx, engine.UploadRequest{
			LetterTypeID:   loadLetterType,
			DisplayName:    loadDisplayName,
			SourceUploadID: loadSourceUploadID,
			Header:         upload.Header,
			Rows:           upload.Rows,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created table %s\n", rec.TableName)
		fmt.Printf("  Columns: %d\n", len(rec.Columns))
		fmt.Printf("  Rows:    %d\n", rec.TotalRows)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadLetterType, "letter-type", "", "letter type id the roster belongs to (required)")
	loadCmd.Flags().StringVar(&loadDisplayName, "display-name", "", "display name used to derive the table name")
	loadCmd.Flags().StringVar(&loadSourceUploadID, "upload-id", "", "source upload id recorded with the table")
	loadCmd.MarkFlagRequired("letter-type")
	rootCmd.AddCommand(loadCmd)
}

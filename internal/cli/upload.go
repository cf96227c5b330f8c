package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var uploadWatch bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv.gz>",
	Short: "Upload a gzip-compressed CSV product feed",
	Long: `Upload a gzip-compressed CSV product feed for background ingestion.

The CSV must have 'sku' and 'name' columns. Processing happens
asynchronously; the command prints the job id immediately. Pass --watch
to follow progress live.

Examples:
  catalogctl upload products.csv.gz
  catalogctl upload products.csv.gz --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadWatch, "watch", "w", false, "follow ingestion progress")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	jobID, err := apiClient.Upload(ctx, args[0])
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	if !uploadWatch {
		fmt.Printf("Upload accepted. Job ID: %s\n", jobID)
		fmt.Printf("Use 'catalogctl watch %s' to follow progress.\n", jobID)
		return nil
	}

	return watchJob(jobID)
}

package cli

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <job-id>",
	Short: "Follow ingestion progress for a job",
	Long: `Follow ingestion progress for an upload job over the server's
progress stream.

Progress is live only: messages published before connecting are not
replayed, so a job that finished earlier shows nothing until you press
Ctrl+C.

Examples:
  catalogctl watch 1f6dcd7c30f346d992cf4b2a7f1a52f3`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	return watchJob(args[0])
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger <event>",
	Short: "Trigger an event with its sample payload",
	Long: `Trigger an event with its sample payload.

All enabled webhooks subscribed to the event receive one fire-and-forget
delivery. Accepts dot or dash form, e.g. 'user.created' or 'user-created'.

Examples:
  catalogctl trigger user.created
  catalogctl trigger payment-completed`,
	Args: cobra.ExactArgs(1),
	RunE: runTrigger,
}

func runTrigger(cmd *cobra.Command, args []string) error {
	event := strings.ReplaceAll(args[0], ".", "-")

	if err := apiClient.SimulateEvent(context.Background(), event); err != nil {
		return err
	}

	fmt.Printf("Event %s triggered.\n", strings.ReplaceAll(event, "-", "."))
	return nil
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfaulhaber/catalogd/internal/client"
	"github.com/spf13/cobra"
)

var (
	webhookURL      string
	webhookEvents   []string
	webhookDisabled bool
	webhookEnable   bool
	webhookDisable  bool
)

var webhooksCmd = &cobra.Command{
	Use:   "webhooks",
	Short: "Manage webhook subscriptions",
	Long: `Manage webhook subscriptions.

Subcommands:
  list    List webhooks (default)
  create  Register a webhook
  update  Change a webhook's URL, events or enabled flag
  delete  Remove a webhook
  test    Send a synchronous test delivery
  events  List available event types

Examples:
  catalogctl webhooks
  catalogctl webhooks create --url https://example.com/hook --events user.created,payment.completed
  catalogctl webhooks test 2b1f0a8c-...
  catalogctl webhooks events`,
	RunE: runListWebhooks,
}

var webhooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhooks",
	RunE:  runListWebhooks,
}

var webhooksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a webhook",
	RunE:  runCreateWebhook,
}

var webhooksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a webhook's URL, events or enabled flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdateWebhook,
}

var webhooksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteWebhook,
}

var webhooksTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Send a synchronous test delivery",
	Args:  cobra.ExactArgs(1),
	RunE:  runTestWebhook,
}

var webhooksEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List available event types",
	RunE:  runListEvents,
}

func init() {
	webhooksCreateCmd.Flags().StringVarP(&webhookURL, "url", "u", "", "webhook URL (required)")
	webhooksCreateCmd.Flags().StringSliceVarP(&webhookEvents, "events", "e", nil, "event types to subscribe to (required)")
	webhooksCreateCmd.Flags().BoolVar(&webhookDisabled, "disabled", false, "register the webhook disabled")
	webhooksCreateCmd.MarkFlagRequired("url")
	webhooksCreateCmd.MarkFlagRequired("events")

	webhooksUpdateCmd.Flags().StringVarP(&webhookURL, "url", "u", "", "new webhook URL")
	webhooksUpdateCmd.Flags().StringSliceVarP(&webhookEvents, "events", "e", nil, "new event type list")
	webhooksUpdateCmd.Flags().BoolVar(&webhookEnable, "enable", false, "enable the webhook")
	webhooksUpdateCmd.Flags().BoolVar(&webhookDisable, "disable", false, "disable the webhook")

	webhooksCmd.AddCommand(webhooksListCmd)
	webhooksCmd.AddCommand(webhooksCreateCmd)
	webhooksCmd.AddCommand(webhooksUpdateCmd)
	webhooksCmd.AddCommand(webhooksDeleteCmd)
	webhooksCmd.AddCommand(webhooksTestCmd)
	webhooksCmd.AddCommand(webhooksEventsCmd)
}

func runListWebhooks(cmd *cobra.Command, args []string) error {
	webhooks, err := apiClient.ListWebhooks(context.Background())
	if err != nil {
		return err
	}

	if len(webhooks) == 0 {
		fmt.Println("No webhooks registered.")
		return nil
	}

	fmt.Printf("Webhooks (%d):\n\n", len(webhooks))
	for _, wh := range webhooks {
		state := "enabled"
		if !wh.IsEnabled {
			state = "disabled"
		}
		fmt.Printf("- %s [%s]\n", wh.ID, state)
		fmt.Printf("  URL:    %s\n", wh.URL)
		fmt.Printf("  Events: %s\n", strings.Join(wh.EventTypes, ", "))
	}

	return nil
}

func runCreateWebhook(cmd *cobra.Command, args []string) error {
	input := client.CreateWebhookInput{
		URL:        webhookURL,
		EventTypes: webhookEvents,
	}
	if webhookDisabled {
		enabled := false
		input.IsEnabled = &enabled
	}

	wh, err := apiClient.CreateWebhook(context.Background(), input)
	if err != nil {
		return err
	}

	fmt.Printf("Created webhook %s for %s\n", wh.ID, wh.URL)
	return nil
}

func runUpdateWebhook(cmd *cobra.Command, args []string) error {
	if webhookEnable && webhookDisable {
		return fmt.Errorf("--enable and --disable are mutually exclusive")
	}

	input := client.UpdateWebhookInput{}
	if webhookURL != "" {
		input.URL = &webhookURL
	}
	if len(webhookEvents) > 0 {
		input.EventTypes = webhookEvents
	}
	if webhookEnable {
		enabled := true
		input.IsEnabled = &enabled
	}
	if webhookDisable {
		enabled := false
		input.IsEnabled = &enabled
	}

	wh, err := apiClient.UpdateWebhook(context.Background(), args[0], input)
	if err != nil {
		return err
	}

	fmt.Printf("Updated webhook %s\n", wh.ID)
	return nil
}

func runDeleteWebhook(cmd *cobra.Command, args []string) error {
	if err := apiClient.DeleteWebhook(context.Background(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted webhook %s\n", args[0])
	return nil
}

func runTestWebhook(cmd *cobra.Command, args []string) error {
	result, err := apiClient.TestWebhook(context.Background(), args[0])
	if err != nil {
		return err
	}

	if result.Success {
		fmt.Printf("✓ Test delivery succeeded (HTTP %d, %.1fms)\n", *result.StatusCode, result.ResponseTimeMS)
		return nil
	}

	fmt.Printf("✗ Test delivery failed: %s (%.1fms)\n", result.Error, result.ResponseTimeMS)
	return nil
}

func runListEvents(cmd *cobra.Command, args []string) error {
	events, err := apiClient.ListEvents(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Available events (%d):\n\n", len(events))
	for _, e := range events {
		fmt.Printf("- %s\n", e)
	}

	return nil
}

// Package cli provides the command-line interface for catalogd.
package cli

import (
	"fmt"
	"os"

	"github.com/mfaulhaber/catalogd/internal/client"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	verbose   bool

	// API client shared by all commands
	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Client for the catalogd product catalog server",
	Long: `Catalogctl talks to a running catalogd server.

Upload gzip-compressed CSV product feeds, watch ingestion progress live,
browse the catalog, and manage webhook subscriptions.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		apiClient = client.New(serverURL)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "catalogd server URL (default $CATALOGD_SERVER_URL or http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(webhooksCmd)
	rootCmd.AddCommand(triggerCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

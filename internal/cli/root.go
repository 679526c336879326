package cli

import (
	"github.com/spf13/cobra"

	"github.com/cloudforge-io/cloudforge/internal/logging"
)

var (
	rootLogLevel     string
	rootSubscription string
	rootGroup        string
	rootLocation     string
	rootTenant       string
)

var rootCmd = &cobra.Command{
	Use:   "cloudforge",
	Short: "Declarative Azure environments for web app pipelines",
	Long: `Cloudforge provisions and tears down the Azure resources a web application
pipeline needs: container registry, key vault, monitoring, storage, network
rules and identities, declared once in a PKL template.

Runs are idempotent. Re-running create converges on the declared state,
re-running delete is a no-op once the resource group is gone.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(rootLogLevel)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootSubscription, "subscription", "", "Azure subscription id (falls back to AZURE_SUBSCRIPTION_ID)")
	rootCmd.PersistentFlags().StringVar(&rootGroup, "group", "", "Resource group that scopes the run")
	rootCmd.PersistentFlags().StringVar(&rootLocation, "location", "westeurope", "Azure region for created resources")
	rootCmd.PersistentFlags().StringVar(&rootTenant, "tenant", "", "Azure tenant id (falls back to AZURE_TENANT_ID)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(versionCmd)
}

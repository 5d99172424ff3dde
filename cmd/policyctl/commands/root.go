package commands

import (
	"github.com/spf13/cobra"

	"github.com/strideiq/policyengine/internal/cli"
	"github.com/strideiq/policyengine/internal/client"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	org     string
	format  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "policyctl",
	Short: "CLI tool for the expense policy engine",
	Long: `Policyctl is a command-line tool for working with the policy engine service.

It can evaluate expenses against the active rule set, manage rules, and
inspect the audit trail.

Examples:
  policyctl rules list --org acme
  policyctl evaluate --org acme --amount 1500 --category Meals
  policyctl audit --org acme --limit 20
  policyctl seed --org acme`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Base URL of the policy engine API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key for rule management")
	rootCmd.PersistentFlags().StringVar(&org, "org", "default", "Organization scope")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
}

func newClient() *client.Client {
	return client.NewClient(baseURL, apiKey)
}

func outputFormat() (cli.OutputFormat, error) {
	return cli.ParseFormat(format)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideiq/policyengine/internal/webhook"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a webhook signing secret",
	Long: `Secret prints a new random signing secret for webhook subscribers.

Set the value as WEBHOOK_SECRET on the server and share it with every
subscriber so they can verify the X-Policy-Signature header.

Examples:
  policyctl secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := webhook.GenerateSecret()
		if err != nil {
			return fmt.Errorf("failed to generate secret: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), secret)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
}

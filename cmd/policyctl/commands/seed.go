package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideiq/policyengine/internal/rules"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the default rule set for an org",
	Long: `Seed uploads the built-in default rules (reject large expenses, flag
overtime meals, reject alcohol) through the rule management API.

Examples:
  policyctl seed --org acme --api-key <admin-key>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		ctx := context.Background()
		for _, rule := range rules.Defaults() {
			if err := c.UpsertRule(ctx, org, rule); err != nil {
				return fmt.Errorf("failed to seed rule %q: %w", rule.ID, err)
			}
			fmt.Printf("seeded rule %q (%s)\n", rule.ID, rule.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strideiq/policyengine/internal/cli"
	"github.com/strideiq/policyengine/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage policy rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rules for an org",
	Long: `List every rule (active and inactive) for the given org.

Examples:
  policyctl rules list --org acme
  policyctl rules list --org acme --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmtOut, err := outputFormat()
		if err != nil {
			return err
		}

		set, err := newClient().ListRules(context.Background(), org)
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}

		return cli.PrintRules(set, fmtOut)
	},
}

var rulesApplyFile string

var rulesApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create or update a rule from a JSON file",
	Long: `Apply a rule definition from a JSON document.

Examples:
  policyctl rules apply --org acme --file rule.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(rulesApplyFile)
		if err != nil {
			return fmt.Errorf("failed to read rule file: %w", err)
		}

		var rule rules.Rule
		if err := json.Unmarshal(raw, &rule); err != nil {
			return fmt.Errorf("failed to parse rule file: %w", err)
		}
		if err := rules.ValidateRule(rule); err != nil {
			return err
		}

		if err := newClient().UpsertRule(context.Background(), org, rule); err != nil {
			return fmt.Errorf("failed to apply rule: %w", err)
		}
		fmt.Printf("rule %q applied\n", rule.ID)
		return nil
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <rule-id>",
	Short: "Delete a rule by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteRule(context.Background(), org, args[0]); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}
		fmt.Printf("rule %q deleted\n", args[0])
		return nil
	},
}

func init() {
	rulesApplyCmd.Flags().StringVar(&rulesApplyFile, "file", "", "Path to a rule JSON document (required)")
	_ = rulesApplyCmd.MarkFlagRequired("file")

	rulesCmd.AddCommand(rulesListCmd, rulesApplyCmd, rulesDeleteCmd)
	rootCmd.AddCommand(rulesCmd)
}

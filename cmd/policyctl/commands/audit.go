package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideiq/policyengine/internal/cli"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent evaluation audit entries",
	Long: `Audit prints the most recent evaluation audit entries, newest first.

Examples:
  policyctl audit --org acme
  policyctl audit --org acme --limit 20 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmtOut, err := outputFormat()
		if err != nil {
			return err
		}

		entries, err := newClient().RecentAudits(context.Background(), org, auditLimit)
		if err != nil {
			return fmt.Errorf("failed to fetch audit entries: %w", err)
		}

		return cli.PrintAudits(entries, fmtOut)
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 10, "Number of entries to fetch")
	rootCmd.AddCommand(auditCmd)
}

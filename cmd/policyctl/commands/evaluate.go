package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strideiq/policyengine/internal/cli"
	"github.com/strideiq/policyengine/internal/engine"
)

var (
	evalFile         string
	evalExpenseID    string
	evalAmount       float64
	evalCategory     string
	evalWorkingHours int
	evalEmployeeID   string
	evalMerchant     string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate an expense against the active rule set",
	Long: `Evaluate submits an expense record and prints the decision: matched
rules, the winning rule, its actions, and the full per-rule trace.

The expense can come from a JSON file or be assembled from flags.

Examples:
  policyctl evaluate --org acme --expense-id e1 --amount 1500
  policyctl evaluate --org acme --file expense.json --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmtOut, err := outputFormat()
		if err != nil {
			return err
		}

		expense, err := buildExpense(cmd)
		if err != nil {
			return err
		}

		result, err := newClient().Evaluate(context.Background(), org, expense)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		return cli.PrintResult(result, fmtOut)
	},
}

func buildExpense(cmd *cobra.Command) (engine.Expense, error) {
	if evalFile != "" {
		raw, err := os.ReadFile(evalFile)
		if err != nil {
			return engine.Expense{}, fmt.Errorf("failed to read expense file: %w", err)
		}
		var expense engine.Expense
		if err := json.Unmarshal(raw, &expense); err != nil {
			return engine.Expense{}, fmt.Errorf("failed to parse expense file: %w", err)
		}
		return expense, nil
	}

	expense := engine.Expense{ExpenseID: evalExpenseID}
	if cmd.Flags().Changed("amount") {
		expense.Amount = &evalAmount
	}
	if cmd.Flags().Changed("category") {
		expense.Category = &evalCategory
	}
	if cmd.Flags().Changed("working-hours") {
		expense.WorkingHours = &evalWorkingHours
	}
	if cmd.Flags().Changed("employee-id") {
		expense.EmployeeID = &evalEmployeeID
	}
	if cmd.Flags().Changed("merchant") {
		expense.Merchant = &evalMerchant
	}
	return expense, nil
}

func init() {
	evaluateCmd.Flags().StringVar(&evalFile, "file", "", "Path to an expense JSON document")
	evaluateCmd.Flags().StringVar(&evalExpenseID, "expense-id", "", "Expense identifier")
	evaluateCmd.Flags().Float64Var(&evalAmount, "amount", 0, "Expense amount")
	evaluateCmd.Flags().StringVar(&evalCategory, "category", "", "Expense category")
	evaluateCmd.Flags().IntVar(&evalWorkingHours, "working-hours", 0, "Working hours on the expense day")
	evaluateCmd.Flags().StringVar(&evalEmployeeID, "employee-id", "", "Employee identifier")
	evaluateCmd.Flags().StringVar(&evalMerchant, "merchant", "", "Merchant name")

	rootCmd.AddCommand(evaluateCmd)
}

// Package cli holds output formatting for the policyctl command-line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/strideiq/policyengine/internal/audit"
	"github.com/strideiq/policyengine/internal/engine"
	"github.com/strideiq/policyengine/internal/rules"
)

// OutputFormat specifies the output format for CLI commands.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (expected table, json or yaml)", s)
	}
}

// PrintRules outputs rules in the specified format.
func PrintRules(set []rules.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]rules.Rule{"rules": set})
	case FormatYAML:
		return printYAML(map[string][]rules.Rule{"rules": set})
	default:
		table := newTable("ID", "NAME", "ACTIVE", "PRIORITY", "CONDITIONS", "ACTIONS")
		for _, r := range set {
			table.Append([]string{
				r.ID,
				r.Name,
				strconv.FormatBool(r.Active),
				strconv.Itoa(r.Priority),
				strconv.Itoa(len(r.Conditions)),
				strings.Join(r.Actions, ","),
			})
		}
		table.Render()
		return nil
	}
}

// PrintResult outputs one evaluation result in the specified format.
func PrintResult(result *engine.Result, format OutputFormat) error {
	switch format {
	case FormatYAML:
		return printYAML(result)
	case FormatTable:
		winner := "-"
		if result.WinningRule != nil {
			winner = *result.WinningRule
		}
		fmt.Printf("winner:  %s\nactions: %s\nmatched: %s\n",
			winner, strings.Join(result.Actions, ","), strings.Join(result.MatchedRules, ","))
		table := newTable("RULE", "MATCHED", "REASON")
		for _, item := range result.Trace {
			table.Append([]string{item.Rule, strconv.FormatBool(item.Matched), item.Reason})
		}
		table.Render()
		return nil
	default:
		return printJSON(result)
	}
}

// PrintAudits outputs audit entries in the specified format.
func PrintAudits(entries []audit.Entry, format OutputFormat) error {
	switch format {
	case FormatYAML:
		return printYAML(entries)
	case FormatTable:
		table := newTable("ID", "ORG", "CREATED AT")
		for _, e := range entries {
			table.Append([]string{e.ID, e.OrgID, e.CreatedAt.Format("2006-01-02 15:04:05")})
		}
		table.Render()
		return nil
	default:
		return printJSON(entries)
	}
}

func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	return table
}

func printJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(data)
}

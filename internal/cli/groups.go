package cli

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-extractor/internal/output"
	"github.com/i474232898/weather-extractor/internal/weather"
)

var groupsCmd = &cobra.Command{
	Use:     "groups",
	Aliases: []string{"list-groups"},
	Short:   "List available variable groups",
	Long: `List the variable groups that can be enabled in a job file.

Examples:
  weather-extractor groups          # Table of groups
  weather-extractor groups --json   # Output as JSON`,
	RunE: runGroups,
}

func init() {
	rootCmd.AddCommand(groupsCmd)

	groupsCmd.Flags().Bool("json", false, "output as JSON")
}

func runGroups(cmd *cobra.Command, args []string) error {
	catalog := weather.DefaultCatalog()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.All())
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !noColor)
	printer.Header("Available variable groups")

	rows := make([][]string, 0, len(catalog.Groups()))
	for _, g := range catalog.All() {
		rows = append(rows, []string{
			g.ID,
			strconv.Itoa(len(g.Variables)),
			strings.Join(g.Variables, ", "),
		})
	}
	return output.RenderRows(printer.Out(), []string{"GROUP", "COUNT", "VARIABLES"}, rows)
}

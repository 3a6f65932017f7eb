package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	queryText        string
	queryTopK        int
	queryDestination string
)

var (
	queryHeaderStyle = lipgloss.NewStyle().Bold(true)
	sourceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dividerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the destination knowledge base",
	Long: `Search the indexed destination guides for fragments relevant to a
query. With --destination the query is widened to cover attractions,
food, transport, and budget for that destination.

Examples:
  wayfarer query -q "museums in Paris"
  wayfarer query -q "cheap food" -k 5
  wayfarer query --destination Barcelona`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of fragments (default from config)")
	queryCmd.Flags().StringVar(&queryDestination, "destination", "", "widened search for one destination")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryText == "" && queryDestination == "" {
		return fmt.Errorf("either --query or --destination is required")
	}

	r, err := sharedRetrieval(false)
	if err != nil {
		return err
	}

	var out string
	if queryDestination != "" {
		fmt.Println(queryHeaderStyle.Render(fmt.Sprintf("Destination: %s", queryDestination)))
		out = r.SearchByDestination(queryDestination)
	} else {
		fmt.Println(queryHeaderStyle.Render(fmt.Sprintf("Query: %s", queryText)))
		out = r.Search(queryText, queryTopK)
	}

	fmt.Println()
	fmt.Println(renderBlocks(out))
	return nil
}

// renderBlocks styles the [Source: ...] labels and --- dividers of the
// retrieval output for the terminal.
func renderBlocks(out string) string {
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "[Source:"):
			lines[i] = sourceStyle.Render(line)
		case strings.TrimSpace(line) == "---":
			lines[i] = dividerStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [destination]",
	Short: "Show a short overview of one destination",
	Long: `Print the opening section of a destination's guide. Destinations
without a guide of their own fall back to a knowledge-base search.

Examples:
  wayfarer summary Paris
  wayfarer summary Lisboa`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	r, err := sharedRetrieval(false)
	if err != nil {
		return err
	}

	fmt.Println(queryHeaderStyle.Render(fmt.Sprintf("About %s", args[0])))
	fmt.Println()
	fmt.Println(renderBlocks(r.DestinationSummary(args[0])))
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "List the destinations in the knowledge base",
	RunE:  runDestinations,
}

func init() {
	rootCmd.AddCommand(destinationsCmd)
}

func runDestinations(cmd *cobra.Command, args []string) error {
	r, err := sharedRetrieval(false)
	if err != nil {
		return err
	}

	names, err := r.Destinations()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No destinations found.")
		return nil
	}

	fmt.Println(queryHeaderStyle.Render(fmt.Sprintf("Destinations (%d):", len(names))))
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

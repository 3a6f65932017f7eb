package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"wayfarer/internal/adapter/llm"
	"wayfarer/internal/adapter/weather"
	"wayfarer/internal/domain"
	"wayfarer/internal/usecase"
)

var (
	planDestination  string
	planDays         int
	planBudget       string
	planInterests    []string
	planRestrictions string
	planOutput       string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a day-by-day travel itinerary",
	Long: `Generate a personalized itinerary for a destination. The plan is
grounded in the knowledge base, adjusted for the current weather, and
written by the configured LLM.

Examples:
  wayfarer plan --destination Paris --days 3
  wayfarer plan --destination Rome --days 5 --budget high --interests art,food
  wayfarer plan --destination Madrid --days 2 --output madrid.md`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planDestination, "destination", "", "destination city (required)")
	planCmd.Flags().IntVar(&planDays, "days", 3, "trip length in days")
	planCmd.Flags().StringVar(&planBudget, "budget", "medium", "budget level (low/medium/high)")
	planCmd.Flags().StringSliceVar(&planInterests, "interests", nil, "comma-separated interests")
	planCmd.Flags().StringVar(&planRestrictions, "restrictions", "", "special requests or restrictions")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "write the itinerary to a file instead of stdout")
	planCmd.MarkFlagRequired("destination")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	r, err := sharedRetrieval(true)
	if err != nil {
		// A degraded retrieval service can still plan from weather and
		// model knowledge; only missing wiring is fatal.
		if r == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: knowledge base unavailable: %v\n", err)
	}

	llmClient, err := llm.NewGroqClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return err
	}

	weatherClient := weather.New(weather.Config{
		APIKey:  os.Getenv(cfg.Weather.APIKeyEnv),
		BaseURL: cfg.Weather.BaseURL,
		Units:   cfg.Weather.Units,
		Lang:    cfg.Weather.Lang,
	})

	planner := usecase.NewPlanner(r, weatherClient, llmClient, nil)

	fmt.Fprintf(os.Stderr, "Planning %d days in %s...\n", planDays, planDestination)

	itinerary, err := planner.Plan(domain.TripRequest{
		Destination:  planDestination,
		Days:         planDays,
		Budget:       planBudget,
		Interests:    planInterests,
		Restrictions: planRestrictions,
	})
	if err != nil {
		return err
	}

	if planOutput != "" {
		if err := os.WriteFile(planOutput, []byte(itinerary.Text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write itinerary: %w", err)
		}
		fmt.Printf("Itinerary for %s written to %s\n", itinerary.Destination, planOutput)
		return nil
	}

	fmt.Println(strings.TrimSpace(itinerary.Text))
	return nil
}

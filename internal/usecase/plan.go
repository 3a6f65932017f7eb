package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"wayfarer/internal/domain"
	"wayfarer/internal/port"
)

// Planner orchestrates itinerary generation: weather lookup, knowledge
// base retrieval, prompt rendering, one LLM call.
type Planner struct {
	retrieval *Retrieval
	weather   port.Weather
	llm       port.LLM
	logger    *slog.Logger
}

func NewPlanner(retrieval *Retrieval, weather port.Weather, llm port.LLM, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		retrieval: retrieval,
		weather:   weather,
		llm:       llm,
		logger:    logger,
	}
}

// Plan generates an itinerary for the request. The weather and
// retrieval steps cannot fail the call; only an invalid request, a
// template problem, or the LLM call itself can.
func (p *Planner) Plan(req domain.TripRequest) (*domain.Itinerary, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, fmt.Errorf("destination is required")
	}
	if req.Days <= 0 {
		return nil, fmt.Errorf("trip length must be at least one day")
	}
	req.Destination = domain.NormalizeDestination(req.Destination)

	p.logger.Info("planning trip",
		"destination", req.Destination, "days", req.Days, "budget", req.Budget)

	weatherInfo := p.weather.Summary(req.Destination)
	contextInfo := p.retrieval.SearchByDestination(req.Destination)

	systemPrompt, err := ItinerarySystemPrompt()
	if err != nil {
		return nil, err
	}
	userPrompt, err := RenderItineraryPrompt(req, weatherInfo, contextInfo)
	if err != nil {
		return nil, err
	}

	text, err := p.llm.GenerateWithSystem(systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("itinerary generation failed: %w", err)
	}

	return &domain.Itinerary{
		Destination: req.Destination,
		Days:        req.Days,
		Text:        text,
	}, nil
}

package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"wayfarer/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// promptData is the field set the user prompt template interpolates.
type promptData struct {
	Destination  string
	Days         int
	Budget       string
	Interests    string
	Restrictions string
	Weather      string
	Context      string
}

// ItinerarySystemPrompt returns the system prompt that fixes the
// planner persona and output format.
func ItinerarySystemPrompt() (string, error) {
	content, err := promptTemplates.ReadFile("templates/itinerary_system.txt")
	if err != nil {
		return "", fmt.Errorf("template not found: %w", err)
	}
	return string(content), nil
}

// RenderItineraryPrompt renders the user prompt from the trip request
// and the retrieved weather and knowledge-base context.
func RenderItineraryPrompt(req domain.TripRequest, weather, context string) (string, error) {
	tmplContent, err := promptTemplates.ReadFile("templates/itinerary_user.txt")
	if err != nil {
		return "", fmt.Errorf("template not found: %w", err)
	}

	tmpl, err := template.New("itinerary").Parse(string(tmplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	interests := "no specific preferences"
	if len(req.Interests) > 0 {
		interests = strings.Join(req.Interests, ", ")
	}
	restrictions := req.Restrictions
	if strings.TrimSpace(restrictions) == "" {
		restrictions = "none"
	}

	data := promptData{
		Destination:  req.Destination,
		Days:         req.Days,
		Budget:       req.Budget,
		Interests:    interests,
		Restrictions: restrictions,
		Weather:      strings.TrimSpace(weather),
		Context:      strings.TrimSpace(context),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

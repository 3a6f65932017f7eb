package usecase

import (
	"path/filepath"
	"strings"
	"testing"

	"wayfarer/internal/domain"
)

type stubWeather struct {
	summary string
}

func (s *stubWeather) Summary(city string) string { return s.summary }

type stubLLM struct {
	system string
	user   string
	reply  string
	err    error
}

func (s *stubLLM) Generate(prompt string) (string, error) {
	s.user = prompt
	return s.reply, s.err
}

func (s *stubLLM) GenerateWithSystem(systemPrompt, userPrompt string) (string, error) {
	s.system = systemPrompt
	s.user = userPrompt
	return s.reply, s.err
}

func (s *stubLLM) ModelName() string { return "stub" }

func TestPlanRendersPromptFromAllSources(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{
		"paris.txt": longText("The Louvre needs a timed ticket in high season.", 10),
	})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}

	llm := &stubLLM{reply: "# Itinerary for Paris\nDay 1: museums."}
	weather := &stubWeather{summary: "Current weather in Paris: 18°C, clear sky."}
	planner := NewPlanner(r, weather, llm, nil)

	itinerary, err := planner.Plan(domain.TripRequest{
		Destination:  "paris",
		Days:         3,
		Budget:       "medium",
		Interests:    []string{"museums", "food"},
		Restrictions: "vegetarian",
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if itinerary.Destination != "Paris" {
		t.Errorf("destination should be normalized, got %q", itinerary.Destination)
	}
	if itinerary.Days != 3 {
		t.Errorf("unexpected days %d", itinerary.Days)
	}
	if itinerary.Text != llm.reply {
		t.Errorf("itinerary text should be the model output verbatim, got %q", itinerary.Text)
	}

	if !strings.Contains(llm.system, "travel agent") {
		t.Errorf("system prompt missing persona:\n%s", llm.system)
	}
	for _, want := range []string{
		"Destination: Paris",
		"Duration: 3 days",
		"Budget: medium",
		"museums, food",
		"vegetarian",
		"18°C",
		"[Source: Paris]",
	} {
		if !strings.Contains(llm.user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, llm.user)
		}
	}
}

func TestPlanDefaultsForEmptyOptionalFields(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{
		"rome.txt": longText("Trastevere trattorias fill up after nine.", 10),
	})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}

	llm := &stubLLM{reply: "plan"}
	planner := NewPlanner(r, &stubWeather{summary: "sunny"}, llm, nil)

	if _, err := planner.Plan(domain.TripRequest{Destination: "Rome", Days: 2}); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.Contains(llm.user, "no specific preferences") {
		t.Errorf("empty interests should render the default text:\n%s", llm.user)
	}
	if !strings.Contains(llm.user, "none") {
		t.Errorf("empty restrictions should render as none:\n%s", llm.user)
	}
}

func TestPlanValidatesRequest(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{"madrid.txt": "Madrid content."})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}
	planner := NewPlanner(r, &stubWeather{}, &stubLLM{}, nil)

	if _, err := planner.Plan(domain.TripRequest{Destination: "", Days: 3}); err == nil {
		t.Error("expected error for empty destination")
	}
	if _, err := planner.Plan(domain.TripRequest{Destination: "Madrid", Days: 0}); err == nil {
		t.Error("expected error for zero days")
	}
}

func TestPlanSurvivesFailedRetrieval(t *testing.T) {
	dir := t.TempDir()

	r, _ := newTestRetrieval(t, filepath.Join(dir, "missing"), filepath.Join(dir, "index.db"))
	llm := &stubLLM{reply: "best effort plan"}
	planner := NewPlanner(r, &stubWeather{summary: "cloudy"}, llm, nil)

	itinerary, err := planner.Plan(domain.TripRequest{Destination: "Paris", Days: 1})
	if err != nil {
		t.Fatalf("Plan should succeed with a failed retrieval service: %v", err)
	}
	if itinerary.Text != "best effort plan" {
		t.Errorf("unexpected itinerary %q", itinerary.Text)
	}
	if !strings.Contains(llm.user, notReadyMessage) {
		t.Errorf("prompt should carry the degradation sentinel:\n%s", llm.user)
	}
}

package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wayfarer/internal/adapter/chunker"
	"wayfarer/internal/adapter/embedding"
	"wayfarer/internal/adapter/kb"
	"wayfarer/internal/domain"
)

func writeKB(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func longText(sentence string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(sentence)
		b.WriteString(" ")
	}
	return b.String()
}

func newTestRetrieval(t *testing.T, kbDir, indexPath string) (*Retrieval, error) {
	t.Helper()
	return NewRetrieval(RetrievalOptions{
		Loader:       kb.NewLoader(kbDir, nil, nil, nil),
		Chunker:      chunker.NewRecursiveChunker(80, 10),
		Embedder:     embedding.NewMockEmbedder(32),
		IndexPath:    indexPath,
		TopK:         3,
		DestinationK: 5,
	})
}

func TestBuildFromScratchAndQuery(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{
		"paris.txt":  longText("The Eiffel Tower dominates the Paris skyline.", 10),
		"rome.txt":   longText("The Colosseum is the main attraction in Rome.", 10),
		"madrid.txt": longText("The Prado museum holds Spanish masterpieces.", 10),
	})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}
	if r.State() != StateReady {
		t.Fatalf("expected ready state, got %s", r.State())
	}
	if r.FragmentCount() == 0 {
		t.Fatal("expected indexed fragments")
	}

	out := r.Search("Eiffel Tower", 3)
	if !strings.Contains(out, "[Source:") {
		t.Errorf("search output missing source labels:\n%s", out)
	}
	if out == notReadyMessage || out == noResultsMessage {
		t.Errorf("expected real results, got sentinel:\n%s", out)
	}
}

func TestSecondConstructionLoadsPersistedIndex(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	indexPath := filepath.Join(dir, "index.db")
	writeKB(t, kbDir, map[string]string{
		"paris.txt": longText("Montmartre and the Seine riverbanks reward walking.", 8),
	})

	first, err := newTestRetrieval(t, kbDir, indexPath)
	if err != nil {
		t.Fatalf("first construction: %v", err)
	}
	want := first.FragmentCount()

	// Remove the knowledge base so a rebuild would fail. A successful
	// second construction proves the index came from disk.
	if err := os.RemoveAll(kbDir); err != nil {
		t.Fatal(err)
	}

	second, err := newTestRetrieval(t, kbDir, indexPath)
	if err != nil {
		t.Fatalf("second construction should load from disk: %v", err)
	}
	if second.FragmentCount() != want {
		t.Errorf("expected %d fragments after load, got %d", want, second.FragmentCount())
	}
	if out := second.Search("Montmartre", 2); !strings.Contains(out, "[Source: Paris]") {
		t.Errorf("loaded index should answer queries:\n%s", out)
	}
}

func TestDimensionChangeTriggersRebuild(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	indexPath := filepath.Join(dir, "index.db")
	writeKB(t, kbDir, map[string]string{
		"paris.txt": longText("The Eiffel Tower dominates the Paris skyline.", 10),
	})

	newWithDimension := func(dim int) (*Retrieval, error) {
		return NewRetrieval(RetrievalOptions{
			Loader:    kb.NewLoader(kbDir, nil, nil, nil),
			Chunker:   chunker.NewRecursiveChunker(80, 10),
			Embedder:  embedding.NewMockEmbedder(dim),
			IndexPath: indexPath,
		})
	}

	if _, err := newWithDimension(16); err != nil {
		t.Fatalf("first construction: %v", err)
	}

	// Same model id but a different vector dimension: the persisted
	// artifact must be rejected and rebuilt, not loaded into a service
	// that can never answer a query.
	r, err := newWithDimension(32)
	if err != nil {
		t.Fatalf("second construction: %v", err)
	}
	if r.State() != StateReady {
		t.Fatalf("expected ready state after rebuild, got %s", r.State())
	}

	out := r.Search("Eiffel Tower", 3)
	if !strings.Contains(out, "[Source: Paris]") {
		t.Errorf("rebuilt index should answer queries, got:\n%s", out)
	}
}

func TestFailedServiceAnswersWithSentinel(t *testing.T) {
	dir := t.TempDir()

	r, err := newTestRetrieval(t, filepath.Join(dir, "missing"), filepath.Join(dir, "index.db"))
	if err == nil {
		t.Fatal("expected error for missing knowledge base")
	}
	if !errors.Is(err, domain.ErrKnowledgeBaseNotFound) {
		t.Errorf("expected ErrKnowledgeBaseNotFound, got %v", err)
	}
	if r == nil {
		t.Fatal("failed construction must still return a service")
	}
	if r.State() != StateFailed {
		t.Errorf("expected failed state, got %s", r.State())
	}

	for _, out := range []string{
		r.Search("anything", 3),
		r.SearchByDestination("Paris"),
	} {
		if out != notReadyMessage {
			t.Errorf("expected sentinel message, got:\n%s", out)
		}
	}
}

func TestEmptyKnowledgeBaseFailsConstruction(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, nil)

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
	if r.State() != StateFailed {
		t.Errorf("expected failed state, got %s", r.State())
	}
}

func TestDestinationSearchIsWiderThanPlainSearch(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{
		"barcelona.txt": longText("The Sagrada Familia rises over the Eixample district of Barcelona.", 20),
		"lisboa.txt":    longText("Tram 28 climbs through the Alfama district of Lisbon.", 20),
	})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}

	plain := strings.Count(r.Search("Barcelona attractions", 0), "[Source:")
	wide := strings.Count(r.SearchByDestination("Barcelona"), "[Source:")

	if plain != 3 {
		t.Errorf("plain search should return the default 3 fragments, got %d", plain)
	}
	if wide != 5 {
		t.Errorf("destination search should return 5 fragments, got %d", wide)
	}
}

func TestDestinationSummaryUsesFileHead(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	long := longText("Rome rewards slow mornings and long dinners.", 60)
	writeKB(t, kbDir, map[string]string{
		"roma.txt":  long,
		"paris.txt": "Paris is compact and walkable.",
	})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}

	summary := r.DestinationSummary("Roma")
	if !strings.HasSuffix(summary, "...") {
		t.Errorf("long file summary should be truncated with ellipsis, got tail %q", summary[len(summary)-20:])
	}
	if got := len([]rune(strings.TrimSuffix(summary, "..."))); got != 1000 {
		t.Errorf("expected 1000-rune head, got %d", got)
	}

	short := r.DestinationSummary("Paris")
	if short != "Paris is compact and walkable." {
		t.Errorf("short file should be returned whole, got %q", short)
	}
}

func TestUnknownDestinationFallsBackToSearch(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{
		"madrid.txt": longText("Retiro park and the golden triangle of museums of Madrid.", 10),
	})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}

	out := r.DestinationSummary("Tokio")
	if out == "" {
		t.Fatal("unknown destination should still produce text")
	}
}

func TestDestinationsListsLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{
		"rome.txt":  "Rome content.",
		"paris.txt": "Paris content.",
	})

	r, err := newTestRetrieval(t, kbDir, filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}

	names, err := r.Destinations()
	if err != nil {
		t.Fatalf("Destinations: %v", err)
	}
	if len(names) != 2 || names[0] != "Paris" || names[1] != "Rome" {
		t.Errorf("unexpected destinations %v", names)
	}
}

func TestRebuildReportsProgress(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	writeKB(t, kbDir, map[string]string{
		"lisboa.txt": longText("Belem pastries are best eaten warm in Lisbon.", 15),
	})

	var lastDone, total int
	_, err := NewRetrieval(RetrievalOptions{
		Loader:    kb.NewLoader(kbDir, nil, nil, nil),
		Chunker:   chunker.NewRecursiveChunker(60, 5),
		Embedder:  embedding.NewMockEmbedder(16),
		IndexPath: filepath.Join(dir, "index.db"),
		BatchSize: 2,
		OnProgress: func(done, n int) {
			lastDone, total = done, n
		},
	})
	if err != nil {
		t.Fatalf("NewRetrieval: %v", err)
	}
	if total == 0 {
		t.Fatal("progress callback never fired")
	}
	if lastDone != total {
		t.Errorf("final progress %d should equal total %d", lastDone, total)
	}
}

package cli

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"wayfarer/config"
	"wayfarer/internal/adapter/chunker"
	"wayfarer/internal/adapter/embedding"
	"wayfarer/internal/adapter/kb"
	"wayfarer/internal/port"
	"wayfarer/internal/usecase"
)

// newEmbedder creates the embedder selected by the config.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, embedding.Options{
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
			BatchSize: cfg.Embedding.BatchSize,
		})
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// retrievalOptions assembles the service wiring from the config. The
// progress callback is only used when a rebuild happens.
func retrievalOptions(cfg *config.Config, rootDir string, showProgress bool) (usecase.RetrievalOptions, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return usecase.RetrievalOptions{}, err
	}

	opts := usecase.RetrievalOptions{
		Loader: kb.NewLoader(
			config.KnowledgeBasePath(rootDir, cfg),
			cfg.KnowledgeBase.Includes,
			cfg.KnowledgeBase.Excludes,
			slog.Default(),
		),
		Chunker:      chunker.NewRecursiveChunker(cfg.Chunking.MaxSize, cfg.Chunking.Overlap),
		Embedder:     embedder,
		IndexPath:    config.IndexPath(rootDir, cfg),
		TopK:         cfg.Retrieve.TopK,
		DestinationK: cfg.Retrieve.DestinationK,
		BatchSize:    cfg.Embedding.BatchSize,
		Logger:       slog.Default(),
	}

	if showProgress {
		var bar *progressbar.ProgressBar
		opts.OnProgress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowBytes(false),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
					progressbar.OptionOnCompletion(func() {
						fmt.Println()
					}),
				)
			}
			bar.Set(done)
		}
	}

	return opts, nil
}

// sharedRetrieval returns the process-wide retrieval service,
// constructing it on first use.
func sharedRetrieval(showProgress bool) (*usecase.Retrieval, error) {
	opts, err := retrievalOptions(GetConfig(), GetRootDir(), showProgress)
	if err != nil {
		return nil, err
	}
	return usecase.Shared(opts)
}

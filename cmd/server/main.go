// cable-quote API server entry point.
package main

import (
	"context"
	"os"

	httpapi "cable-quote/api"
	"cable-quote/db/clickhouse"
	"cable-quote/internal/embedding"
	"cable-quote/internal/engine"
	"cable-quote/pkg/platform"
)

func main() {
	logger := platform.InitLogger()

	embedder, err := embedding.New(embedding.Config{
		Provider:       platform.GetEnv("CABLEQUOTE_EMBED_PROVIDER", "lexical"),
		OllamaEndpoint: platform.GetEnv("OLLAMA_ENDPOINT", "http://localhost:11434"),
		OllamaModel:    platform.GetEnv("OLLAMA_MODEL", "embeddinggemma"),
	})
	if err != nil {
		platform.LogFatal(logger, "Failed to initialize embedder", err)
	}

	opts := []engine.Option{}
	if platform.GetEnvBool("CABLEQUOTE_SNAPSHOTS", false) {
		store, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     platform.GetEnv("CLICKHOUSE_HOST", "localhost"),
			Port:     platform.GetEnvInt("CLICKHOUSE_PORT", 9000),
			Database: platform.GetEnv("CLICKHOUSE_DATABASE", "cablequote"),
			Username: platform.GetEnv("CLICKHOUSE_USER", "default"),
			Password: platform.GetEnv("CLICKHOUSE_PASSWORD", ""),
		})
		if err != nil {
			logger.Warn("Snapshot store unavailable, continuing without persistence", "error", err)
		} else {
			if err := store.EnsureSchema(context.Background()); err != nil {
				platform.LogFatal(logger, "Failed to initialize snapshot schema", err)
			}
			opts = append(opts, engine.WithSnapshotter(store))
			defer store.Close()
		}
	}

	eng := engine.New(embedder, logger, opts...)

	cfg := httpapi.DefaultConfig()
	cfg.Port = platform.GetEnvInt("PORT", cfg.Port)

	if err := httpapi.NewServer(eng, cfg, logger).Start(); err != nil {
		logger.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

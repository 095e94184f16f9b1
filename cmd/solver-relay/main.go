package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"solver-relay/internal/config"
	"solver-relay/internal/format"
	"solver-relay/internal/handle"
	"solver-relay/internal/llm"
	"solver-relay/internal/llm/anthropic"
	"solver-relay/internal/llm/openai"
	"solver-relay/internal/solver"
	"solver-relay/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	providers := &llm.Providers{
		Claude: anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel),
		GPT4:   openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel),
	}

	pipeline, err := format.ByName(cfg.Normalizer)
	if err != nil {
		log.Error("bad NORMALIZER setting", "err", err)
		os.Exit(1)
	}

	svc, err := solver.New(providers, pipeline, cfg.MaxTokens, log)
	if err != nil {
		log.Error("failed to create solver", "err", err)
		os.Exit(1)
	}

	if dsn := config.DatabaseDSN(); dsn != "" {
		db, err := openDB(dsn)
		if err != nil {
			log.Error("answer cache unavailable", "err", err)
			os.Exit(1)
		}
		svc = svc.WithCache(store.NewAnswerRepo(db), cfg.CacheMaxAge)
		log.Info("answer cache enabled", "max_age", cfg.CacheMaxAge)
	}

	h := handle.New(svc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/solve", h.Solve)
	mux.HandleFunc("/api/chat", h.Chat)
	mux.HandleFunc("/test", h.Test)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/", handle.StaticPage(cfg.StaticDir, "index.html", "/"))
	for _, page := range []string{"math", "science", "law", "business"} {
		mux.HandleFunc("/"+page, handle.StaticPage(cfg.StaticDir, page+".html", ""))
	}

	handler := cors.AllowAll().Handler(handle.Chain(mux,
		handle.Recover(log),
		handle.RequestID,
		handle.Logging(log),
	))

	addr := ":" + cfg.Port
	log.Info("solver-relay listening", "addr", addr, "normalizer", pipeline.Name())
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

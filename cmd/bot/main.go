package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/joho/godotenv"

	"solver-relay/internal/config"
	"solver-relay/internal/format"
	"solver-relay/internal/llm"
	"solver-relay/internal/llm/anthropic"
	"solver-relay/internal/llm/openai"
	"solver-relay/internal/solver"
	"solver-relay/internal/store"
	"solver-relay/internal/telegram"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	if cfg.TelegramBotToken == "" {
		log.Error("required environment variable is not set", "key", "TELEGRAM_BOT_TOKEN")
		os.Exit(1)
	}

	providers := &llm.Providers{
		Claude: anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel),
		GPT4:   openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel),
	}

	// the bot renders plain text; Telegram's HTML subset has no ordered
	// lists, so the passthrough variant is used here
	svc, err := solver.New(providers, format.SimpleStepPassthrough(), cfg.MaxTokens, log)
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

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Error("failed to create bot", "err", err)
		os.Exit(1)
	}
	bot.Debug = false

	router := &telegram.Router{
		Bot:      bot,
		Solver:   svc,
		Settings: telegram.NewManager(telegram.Settings{Domain: "math", Model: telegram.ModelBoth}),
		Log:      log,
	}

	// health endpoint alongside polling, so the platform can probe the process
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.Port
		log.Info("health server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("health server stopped", "err", err)
			os.Exit(1)
		}
	}()

	log.Info("bot polling", "username", bot.Self.UserName)
	runPolling(context.Background(), bot, log, router.HandleUpdate)
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

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelayFromError picks a backoff for polling failures, honoring
// Telegram's "retry after N" hint on 429s.
func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, log *slog.Logger, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("polling stopped", "reason", ctx.Err())
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < baseDelay {
				d = baseDelay
			}
			if d > maxDelay {
				d = maxDelay
			}
			log.Warn("polling error", "err", err, "retry_in", d)
			time.Sleep(d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
	}
}

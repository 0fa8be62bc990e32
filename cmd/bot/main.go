package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/faruk-isik/x-trend-bot/internal/config"
	"github.com/faruk-isik/x-trend-bot/internal/generate"
	"github.com/faruk-isik/x-trend-bot/internal/history"
	"github.com/faruk-isik/x-trend-bot/internal/pipeline"
	"github.com/faruk-isik/x-trend-bot/internal/publisher"
	"github.com/faruk-isik/x-trend-bot/internal/publisher/telegram"
	"github.com/faruk-isik/x-trend-bot/internal/publisher/x"
	"github.com/faruk-isik/x-trend-bot/internal/sanitize"
	"github.com/faruk-isik/x-trend-bot/internal/scheduler"
	"github.com/faruk-isik/x-trend-bot/internal/server"
	"github.com/faruk-isik/x-trend-bot/internal/source"
	"github.com/faruk-isik/x-trend-bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipe, err := buildPipeline(ctx, cfg, store, log)
	if err != nil {
		log.Error("build pipeline", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(pipe, cfg.Interval(), log)
	go sched.Run(ctx)

	router := server.NewRouter(server.NewHandler(pipe, store, log))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting bot", "port", cfg.Port, "source", cfg.Source, "publisher", cfg.Publisher)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server", "error", err)
		os.Exit(1)
	}

	log.Info("bot stopped")
}

func buildPipeline(ctx context.Context, cfg *config.Config, store storage.Storage, log *slog.Logger) (*pipeline.Pipeline, error) {
	rules := source.ExcludeRules(cfg.ExcludeWordList())

	var src source.Source
	switch cfg.Source {
	case "rss":
		src = source.NewRSS(http.DefaultClient, cfg.RSSURL, rules)
	default:
		src = source.NewDDG(http.DefaultClient, cfg.SearchQuery, cfg.MaxResults, rules)
	}

	sanitizer := sanitize.New(sanitize.Options{KeepEmoji: cfg.KeepEmoji})
	cons := generate.Constraints{
		MaxChars:       cfg.MaxPostChars,
		Language:       generate.LanguageTurkish,
		Tone:           generate.ToneNeutral,
		ForbidHashtags: true,
		ForbidEmoji:    !cfg.KeepEmoji,
		Temperature:    cfg.GeminiTemperature,
	}

	client, err := generate.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	var generators []*generate.Generator
	for _, mdl := range cfg.Models() {
		backend := generate.NewGemini(client, mdl, cfg.GeminiTemperature, !cfg.NoGrounding)
		generators = append(generators, generate.New(backend, sanitizer, cons))
	}

	var pub publisher.Publisher
	switch cfg.Publisher {
	case "telegram":
		pub, err = telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
	default:
		pub = x.New(x.Credentials{
			APIKey:       cfg.XAPIKey,
			APISecret:    cfg.XAPISecret,
			AccessToken:  cfg.XAccessToken,
			AccessSecret: cfg.XAccessSecret,
		}, log)
	}

	hist := history.New(history.DefaultTitleCap, history.DefaultTextCap)

	return pipeline.New(src, generators, pub, hist, store, log, pipeline.Config{
		MaxAttempts:       cfg.MaxAttempts,
		TitleThreshold:    cfg.TitleSimilarity,
		TextThreshold:     cfg.TextSimilarity,
		ReuseSeenFallback: cfg.ReuseSeenFallback,
		CallTimeout:       cfg.CallTimeout(),
		FetchRetries:      cfg.FetchRetries,
		FetchRetryDelay:   cfg.FetchRetryDelay(),
	}), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

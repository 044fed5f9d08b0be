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

	"pastebin/internal/checklist"
	"pastebin/internal/config"
	"pastebin/internal/notes"
	"pastebin/internal/notify"
	"pastebin/internal/uploads"
	"pastebin/internal/web"
)

func main() {
	level := parseLogLevel(os.Getenv("PASTEBIN_DEBUG_LEVEL"))
	pretty := strings.EqualFold(os.Getenv("PASTEBIN_LOG_PRETTY"), "1") || strings.EqualFold(os.Getenv("PASTEBIN_LOG_PRETTY"), "true")
	var handler slog.Handler
	if pretty {
		handler = newPrettyHandler(os.Stdout, level)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))

	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Error("load timezone", "tz", cfg.Timezone, "err", err)
		os.Exit(1)
	}

	store, err := notes.Open(filepath.Join(cfg.DataPath, "notes.json"))
	if err != nil {
		slog.Error("open notes store", "err", err)
		os.Exit(1)
	}
	tasks := checklist.NewEngine(filepath.Join(cfg.DataPath, "checklist_data.json"), loc)
	files, err := uploads.NewDir(cfg.UploadPath)
	if err != nil {
		slog.Error("create upload dir", "err", err)
		os.Exit(1)
	}

	srv, err := web.NewServer(cfg, store, tasks, files)
	if err != nil {
		slog.Error("server init", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		client := notify.NewClient(cfg.TelegramToken, cfg.TelegramChatID)
		notifier := notify.NewNotifier(tasks, client, loc, cfg.NotifyLink, cfg.NotifyInterval)
		go notifier.Run(ctx)
		slog.Info("notifier started", "interval", cfg.NotifyInterval.String())
	} else {
		slog.Info("notifier disabled: telegram credentials not set")
	}

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("listening", "addr", cfg.ListenAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func parseLogLevel(raw string) slog.Leveler {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}
	return level
}

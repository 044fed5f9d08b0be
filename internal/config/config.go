package config

import (
	"os"
	"time"
)

type Config struct {
	DataPath       string
	UploadPath     string
	ListenAddr     string
	Secret         string
	TelegramToken  string
	TelegramChatID string
	NotifyInterval time.Duration
	NotifyLink     string
	Timezone       string
}

func Load() Config {
	initEnvFile()

	cfg := Config{
		DataPath:       envOr("PASTEBIN_DATA_PATH", "."),
		UploadPath:     envOr("PASTEBIN_UPLOAD_PATH", "uploads"),
		ListenAddr:     envOr("PASTEBIN_LISTEN_ADDR", "127.0.0.1:8080"),
		Secret:         os.Getenv("PASTEBIN_SECRET"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
		NotifyLink:     envOr("PASTEBIN_NOTIFY_LINK", "https://mypastebin.duckdns.org/checklist"),
		Timezone:       envOr("PASTEBIN_TIMEZONE", "America/Toronto"),
	}
	cfg.NotifyInterval = parseDurationOr("PASTEBIN_NOTIFY_INTERVAL", time.Hour)
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

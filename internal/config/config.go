// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string
	LedgerMode string // memory | local | postgres
	NATSURL    string // empty disables the event feed

	IdleMatchTTL    time.Duration
	JanitorInterval time.Duration
}

// Load reads the server configuration. Missing values fall back to
// development defaults; nothing here is fatal.
func Load() *Config {
	_ = godotenv.Load()

	addr := strings.TrimSpace(os.Getenv("SERVER_ADDR"))
	if addr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}

	ledgerMode := strings.TrimSpace(os.Getenv("LEDGER_MODE"))
	if ledgerMode == "" {
		ledgerMode = "memory"
	}

	return &Config{
		Addr:            addr,
		LedgerMode:      ledgerMode,
		NATSURL:         strings.TrimSpace(os.Getenv("NATS_URL")),
		IdleMatchTTL:    envDurationSeconds("IDLE_MATCH_TTL_SEC", 10*time.Minute),
		JanitorInterval: envDurationSeconds("JANITOR_INTERVAL_SEC", time.Minute),
	}
}

func envDurationSeconds(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

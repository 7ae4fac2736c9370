package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/masonlet/starlet-setup/internal/logfields"
)

// envFiles are loaded in order; earlier files and the process environment win.
var envFiles = []string{".env", ".env.local"}

// LoadEnv loads .env files from the working directory without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Ignoring unreadable env file", logfields.Path(f), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment file", logfields.Path(f))
	}
}

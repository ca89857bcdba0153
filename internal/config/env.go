package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/lesswatch/internal/logfields"
)

// envFiles are read in order; values already in the environment win.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads env files from the working directory and from dir.
func loadEnvFiles(dir string) {
	seen := make(map[string]bool)
	for _, base := range []string{".", dir} {
		for _, name := range envFiles {
			path := filepath.Join(base, name)
			abs, err := filepath.Abs(path)
			if err != nil || seen[abs] {
				continue
			}
			seen[abs] = true
			if err := godotenv.Load(path); err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					slog.Warn("Failed to load env file", logfields.Path(path), logfields.Error(err))
				}
				continue
			}
			slog.Debug("Loaded environment variables", logfields.Path(path))
		}
	}
}

// config/overlay.go
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads .env (if present) into the process environment.
// A missing file is not an error.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// OverlayEnv applies environment overrides on top of the file config.
// HUNTER_API_KEY is read by secrets.ResolveHunterKey instead, so it never
// ends up in a saved config file.
func OverlayEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.App.Addr, "LEADGEN_ADDR")
	set(&cfg.App.DataDir, "LEADGEN_DATA_DIR")
	set(&cfg.App.Env, "LEADGEN_ENV")
	set(&cfg.App.LogLevel, "LOG_LEVEL")
	set(&cfg.Hunter.BaseURL, "HUNTER_BASE_URL")
}

// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries everything the service needs at startup. Defaults suit a
// local deployment with yt-dlp and ffmpeg on PATH.
type Config struct {
	ListenAddr    string        `env:"LISTEN_ADDR" env-default:":8080"`
	DownloadDir   string        `env:"DOWNLOAD_DIR" env-default:"downloads"`
	ConvertDir    string        `env:"CONVERT_DIR" env-default:"conversions"`
	CookieFile    string        `env:"COOKIE_FILE" env-default:"cookies.txt"`
	ExtractorPath string        `env:"YTDLP_PATH" env-default:"yt-dlp"`
	FFmpegPath    string        `env:"FFMPEG_PATH"`
	PlayerClients []string      `env:"PLAYER_CLIENTS" env-default:"tv,mweb" env-separator:","`
	CleanupDelay  time.Duration `env:"CLEANUP_DELAY" env-default:"120s"`

	// DownloadTimeout bounds a single extract-and-download run;
	// ConvertTimeout bounds a single ffmpeg conversion.
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" env-default:"10m"`
	ConvertTimeout  time.Duration `env:"CONVERT_TIMEOUT" env-default:"300s"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}

// EnsureDirs creates the working directories if missing.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DownloadDir, c.ConvertDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

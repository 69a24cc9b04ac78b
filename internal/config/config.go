// Package config loads the process-wide immutable configuration from the
// environment with sane defaults. Loaded once in main and passed explicitly.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"swiftgrab/internal/core/domain"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port           string
	LogLevel       string
	ResolveTimeout time.Duration
	FFmpegPath     string
	CORSOrigins    []string
	AllowedHosts   map[domain.Platform][]string
}

// Load reads SWIFTGRAB_* environment variables over the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("swiftgrab")
	v.AutomaticEnv()

	v.SetDefault("port", "8081")
	v.SetDefault("log_level", "info")
	v.SetDefault("resolve_timeout", "30s")
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("cors_origins", []string{"*"})

	timeout := v.GetDuration("resolve_timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("resolve_timeout must be positive, got %q", v.GetString("resolve_timeout"))
	}

	return &Config{
		Port:           v.GetString("port"),
		LogLevel:       v.GetString("log_level"),
		ResolveTimeout: timeout,
		FFmpegPath:     v.GetString("ffmpeg_path"),
		CORSOrigins:    v.GetStringSlice("cors_origins"),
		AllowedHosts:   DefaultAllowedHosts(),
	}, nil
}

// DefaultAllowedHosts is the closed allow-list of supported hosts per
// platform. Hostnames match exactly or as a subdomain of an entry.
func DefaultAllowedHosts() map[domain.Platform][]string {
	return map[domain.Platform][]string{
		domain.PlatformYouTube:  {"youtube.com", "youtu.be"},
		domain.PlatformReddit:   {"reddit.com", "redd.it"},
		domain.PlatformTwitterX: {"twitter.com", "x.com"},
	}
}

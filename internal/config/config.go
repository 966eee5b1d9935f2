// Package config loads the service's configuration from the environment
// once at startup into an immutable struct.
//
// Grounded on mohammed-shakir-h3-spatial-cache's internal/core/config.FromEnv
// getenv/getint helper idiom, extended with joho/godotenv for .env loading
// and dustin/go-humanize for the MAX_POST_SIZE byte-size string, the way
// original_source/src/config.rs resolves its own environment variables.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting the service needs. It is
// built once in Load and never mutated afterward.
type Config struct {
	TileSetPath           string
	TileSetCache          int
	MaxPostSize           int64
	MaxParallelProcessing int
	MaxConcurrentHandlers int
	MaxThreads            int
	Port                  int
	Bind                  string
	S3Endpoint            string
	S3Bucket              string
	S3AccessKeyID         string
	S3SecretAccessKey     string
	S3Region              string
	LogLevel              string
}

// Load reads .env (if present, silently ignored otherwise) and then the
// process environment into a Config, applying spec defaults for anything
// unset or empty. As a side effect it calls runtime.GOMAXPROCS when
// MAX_THREADS is set, since Go has no literal worker-thread-count knob to
// hand it.
func Load() (Config, error) {
	_ = godotenv.Load()

	maxPostSize, err := humanize.ParseBytes(getenv("MAX_POST_SIZE", "500kb"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_POST_SIZE: %w", err)
	}

	cfg := Config{
		TileSetPath:           getenv("TILE_SET_PATH", defaultTileSetPath()),
		TileSetCache:          getint("TILE_SET_CACHE", 128),
		MaxPostSize:           int64(maxPostSize),
		MaxParallelProcessing: getint("MAX_PARALLEL_PROCESSING", 500),
		MaxConcurrentHandlers: getint("MAX_CONCURRENT_HANDLERS", 1000),
		MaxThreads:            getint("MAX_THREADS", 0),
		Port:                  getint("PORT", 3000),
		Bind:                  getenv("BIND", "0.0.0.0"),
		S3Endpoint:            getenv("S3_ENDPOINT", ""),
		S3Bucket:              getenv("S3_BUCKET", ""),
		S3AccessKeyID:         firstNonEmptyEnv("S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"),
		S3SecretAccessKey:     firstNonEmptyEnv("S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"),
		S3Region:              firstNonEmptyEnv("S3_REGION", "AWS_REGION"),
		LogLevel:              getenv("LOG_LEVEL", "info"),
	}

	if cfg.MaxThreads > 0 {
		runtime.GOMAXPROCS(cfg.MaxThreads)
	}

	return cfg, nil
}

func defaultTileSetPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func firstNonEmptyEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

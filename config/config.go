package config

import (
	"os"
	"strconv"
)

// App holds the core settings read from the environment. Backend
// connections (Mongo, Redis) keep their own Init functions.
type App struct {
	Port string

	// speech service
	STTProvider    string // "sarvam" (default) | "google"
	SarvamAPIKey   string
	SarvamEndpoint string // empty means the public endpoint

	// pipeline
	ChunkWorkers int64

	// optional collaborators
	GCSBucket string
	FFmpegBin string
}

func Load() App {
	return App{
		Port:           getenv("PORT", "8080"),
		STTProvider:    getenv("STT_PROVIDER", "sarvam"),
		SarvamAPIKey:   os.Getenv("SARVAM_API_KEY"),
		SarvamEndpoint: os.Getenv("SARVAM_API_URL"),
		ChunkWorkers:   getint("CHUNK_WORKERS", 4),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		FFmpegBin:      os.Getenv("FFMPEG_BIN"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

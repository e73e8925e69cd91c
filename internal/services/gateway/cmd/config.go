package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	IngestURL string // base URL of the ingest service
	TimeoutMs int

	// circuit breaker tuning, shared by both upstream calls
	CBFails      int
	CBOpenMs     int
	CBIntervalMs int

	LatestLimit   int
	WindowMinutes int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:      getenv("PORT", "5009"),
		IngestURL: getenv("INGEST_URL", "http://ingest.cloud:8080"),
		TimeoutMs: getenvInt("TIMEOUT_MS", 3000),

		CBFails:      getenvInt("CB_FAILS", 3),
		CBOpenMs:     getenvInt("CB_OPEN_MS", 10000),
		CBIntervalMs: getenvInt("CB_INTERVAL_MS", 60000),

		LatestLimit:   getenvInt("LATEST_LIMIT", 20),
		WindowMinutes: getenvInt("WINDOW_MINUTES", 1440),
	}
}

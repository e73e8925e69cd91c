package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/services/ingest"
	"github.com/LeonardoBeccarini/waterlevel_station/pkg/mqttbus"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// parseTokens reads "token=station,token2=station2".
func parseTokens(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			log.Printf("ingest: skipping malformed token pair %q", pair)
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

func main() {
	cfg := struct {
		Broker mqttbus.Config

		InfluxURL    string
		InfluxToken  string
		InfluxOrg    string
		InfluxBucket string

		Tokens        map[string]string
		TelemetryTmpl string
		DedupTTL      time.Duration

		BatchSize     int
		FlushInterval time.Duration

		HTTPPort      int
		ShutdownGrace time.Duration
	}{
		Broker: mqttbus.Config{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "ingest-service"),
		},

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "hydro"),
		InfluxBucket: envStr("INFLUX_BUCKET", "levels"),

		Tokens:        parseTokens(envStr("STATION_TOKENS", "")),
		TelemetryTmpl: envStr("TELEMETRY_TOPIC", "waterlevel/telemetry/{station}"),
		DedupTTL:      time.Duration(envInt("UPLOAD_DEDUP_TTL_S", 60)) * time.Second,

		BatchSize:     envInt("WRITE_BATCH_SIZE", 10),
		FlushInterval: time.Duration(envInt("WRITE_FLUSH_INTERVAL_MS", 200)) * time.Millisecond,

		HTTPPort:      envInt("HTTP_PORT", 8080),
		ShutdownGrace: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === InfluxDB ===
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writeAPI := influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket)
	writer := ingest.NewWriter(writeAPI)

	// === MQTT ===
	mqttClient, err := mqttbus.NewConn(&cfg.Broker, ctx)
	if err != nil {
		log.Fatalf("mqtt connection error: %v", err)
	}
	defer mqttbus.CloseConn(mqttClient)
	publisher := mqttbus.NewPublisher(mqttClient, strings.ReplaceAll(cfg.TelemetryTmpl, "{station}", "unknown"))

	svc, err := ingest.NewService(cfg.Tokens, writeAPI, writer, publisher, cfg.TelemetryTmpl, cfg.DedupTTL)
	if err != nil {
		log.Fatalf("ingest service: %v", err)
	}

	// === HTTP ===
	mux := http.NewServeMux()
	mux.Handle("/ingest/", svc.UploadHandler())
	mux.Handle("/levels/latest", ingest.NewLatestLevelsHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket))
	mux.Handle("/levels/stats", ingest.NewStatsHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket))
	mux.Handle("/healthz", ingest.NewHealthHandler(mqttClient, influx, writer))
	mux.Handle("/readyz", ingest.NewReadyHandler(mqttClient, influx, writer, 2*time.Second))
	mux.Handle("/metrics", ingest.MetricsHandler())

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("ingest: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// === Wait for signal ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Printf("ingest: shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shCancel()
	_ = hs.Shutdown(shCtx)

	// let the async writer flush
	time.Sleep(cfg.FlushInterval + 100*time.Millisecond)
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/services/aggregator"
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

func main() {
	cfg := &mqttbus.Config{
		Host:     envStr("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     envStr("MQTT_USER", "guest"),
		Password: envStr("MQTT_PASSWORD", "guest"),
		ClientID: envStr("HOSTNAME", "level-aggregator"),
	}
	window := time.Duration(envInt("AGGREGATION_WINDOW_MIN", 60)) * time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqttbus.NewConn(cfg, ctx)
	if err != nil {
		log.Fatalf("mqtt connection error: %v", err)
	}

	publisher := mqttbus.NewPublisher(client, "waterlevel/aggregated/unknown")
	consumer := mqttbus.NewConsumer(client, envStr("TELEMETRY_SUB_TOPIC", "waterlevel/telemetry/#"), nil)

	svc := aggregator.NewService(consumer, publisher, window, envStr("AGGREGATED_TOPIC", "waterlevel/aggregated/{station}"))

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	log.Printf("aggregator: running, window=%s", window)
	svc.Start(ctx)
}

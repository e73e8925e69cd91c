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

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model"
	"github.com/LeonardoBeccarini/waterlevel_station/internal/modem"
	"github.com/LeonardoBeccarini/waterlevel_station/internal/sensor"
	"github.com/LeonardoBeccarini/waterlevel_station/internal/station"
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

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// logTransport stands in for the modem on bench runs: every SMS and upload
// becomes a log line.
type logTransport struct{}

func (logTransport) SendSMS(number, body string) error {
	log.Printf("sms -> %s: %q", number, body)
	return nil
}

func (logTransport) Upload(levelCm int, tempTenths *int) error {
	if tempTenths != nil {
		log.Printf("upload: level=%dcm temp=%d", levelCm, *tempTenths)
	} else {
		log.Printf("upload: level=%dcm", levelCm)
	}
	return nil
}

func main() {
	dir, err := model.ParseDirection(envStr("DIRECTION", string(model.DistanceDown)))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cfg := station.Config{
		Direction: dir,
		Reference: envInt("REFERENCE_CM", 0),
		Thresholds: [3]int{
			envInt("THRESHOLD_1", 30),
			envInt("THRESHOLD_2", 20),
			envInt("THRESHOLD_3", 10),
		},
		MinDist:         envInt("MIN_DIST", 0),
		MaxDist:         envInt("MAX_DIST", 400),
		UploadPeriodMin: envInt("UPLOAD_PERIOD_MIN", 10),
		FaultInterval:   time.Duration(envInt("FAULT_INTERVAL_MIN", 20)) * time.Minute,
		CycleInterval:   time.Duration(envInt("CYCLE_INTERVAL_MS", 500)) * time.Millisecond,
		Contacts:        splitCSV(envStr("CONTACTS", "")),
	}

	var (
		sms      station.SMSSender
		uploader station.Uploader
	)
	switch mode := envStr("MODEM_MODE", "log"); mode {
	case "serial":
		port, err := modem.OpenSerial(envStr("MODEM_DEV", "/dev/ttyUSB0"))
		if err != nil {
			log.Fatalf("modem: %v", err)
		}
		defer port.Close()
		m := modem.New(port, station.RealSleeper())
		up, err := modem.NewGPRSUploader(m, modem.UploadConfig{
			APN:         envStr("GPRS_APN", "internet.t-mobile"),
			APNUser:     envStr("GPRS_USER", ""),
			APNPassword: envStr("GPRS_PASSWORD", ""),
			ServerURL:   envStr("SERVER_URL", ""),
			Token:       envStr("SERVER_TOKEN", ""),
		})
		if err != nil {
			log.Fatalf("uploader: %v", err)
		}
		sms, uploader = m, up
	case "log":
		lt := logTransport{}
		sms, uploader = lt, lt
	default:
		log.Fatalf("config: unknown MODEM_MODE %q", mode)
	}

	// a failed RTC init leaves the clock nil; the loop turns that into the
	// fatal ClockFault path
	var clock station.Clock
	if c, cerr := station.NewSystemClock(); cerr != nil {
		log.Printf("rtc init failed: %v", cerr)
	} else {
		clock = c
	}

	sim := sensor.NewSimulator(
		envInt("SIM_START_CM", 200),
		cfg.MinDist, cfg.MaxDist,
		float64(envInt("SIM_DROPOUT_PCT", 0))/100,
		time.Now().UnixNano(),
	)
	if envInt("SIM_TEMP_PROBE", 1) == 0 {
		sim.DisableTemperature()
	}

	st, err := station.New(cfg, station.Deps{
		Sensor:   sim,
		Clock:    clock,
		SMS:      sms,
		Uploader: uploader,
	})
	if err != nil {
		log.Fatalf("station: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	log.Printf("station: starting, direction=%s thresholds=%v period=%dmin", cfg.Direction, cfg.Thresholds, cfg.UploadPeriodMin)
	st.Run(ctx)

	if st.State() == station.StateFaulted {
		log.Fatalf("station halted: %s (manual restart required)", st.FaultReason())
	}
	log.Printf("station: stopped")
}

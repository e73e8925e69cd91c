package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model/messages"
	"github.com/LeonardoBeccarini/waterlevel_station/pkg/dedup"
	"github.com/LeonardoBeccarini/waterlevel_station/pkg/mqttbus"
)

// pointWriter is the slice of api.WriteAPI the service needs; narrow so
// tests inject a recorder.
type pointWriter interface {
	WritePoint(p *write.Point)
}

// Service accepts the stations' path-encoded GET uploads, stores them in
// Influx and republishes them on MQTT for the aggregator.
type Service struct {
	tokens    map[string]string // shared secret -> station id
	write     pointWriter
	tracker   *Writer
	publisher mqttbus.IPublisher
	topicTmpl string // e.g. waterlevel/telemetry/{station}
	deduper   *dedup.Deduper
}

func NewService(tokens map[string]string, w pointWriter, tracker *Writer, pub mqttbus.IPublisher, topicTmpl string, dedupTTL time.Duration) (*Service, error) {
	if len(tokens) == 0 {
		return nil, errors.New("no station tokens configured")
	}
	if w == nil {
		return nil, errors.New("point writer is nil")
	}
	if topicTmpl == "" {
		topicTmpl = "waterlevel/telemetry/{station}"
	}
	return &Service{
		tokens:    tokens,
		write:     w,
		tracker:   tracker,
		publisher: pub,
		topicTmpl: topicTmpl,
		deduper:   dedup.New(dedupTTL, 20000),
	}, nil
}

// UploadHandler handles GET /ingest/{token}/{level}[/{tempTenths}], the
// exact shape the SIM800L writes into HTTPPARA "URL".
func (s *Service) UploadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, level, temp, err := parseUploadPath(strings.TrimPrefix(r.URL.Path, "/ingest/"))
		if err != nil {
			rejectedTotal.WithLabelValues("bad_request").Inc()
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		stationID, ok := s.tokens[token]
		if !ok {
			rejectedTotal.WithLabelValues("bad_token").Inc()
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		// GPRS retries resend the identical path within seconds
		if !s.deduper.ShouldProcess(r.URL.Path) {
			duplicatesTotal.Inc()
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("dup"))
			return
		}

		evt := messages.TelemetryEvent{
			StationID:  stationID,
			LevelCm:    level,
			TempTenths: temp,
			Timestamp:  time.Now().UTC(),
		}
		s.write.WritePoint(TelemetryToPoint(evt))
		s.tracker.MarkIngest(stationID)
		uploadsTotal.WithLabelValues(stationID).Inc()

		if s.publisher != nil {
			b, _ := json.Marshal(evt)
			topic := strings.ReplaceAll(s.topicTmpl, "{station}", stationID)
			if err := s.publisher.PublishToQos(topic, 0, false, string(b)); err != nil {
				log.Printf("ingest: publish telemetry error: %v", err)
			}
		}

		log.Printf("ingest: station=%s level=%dcm temp=%v", stationID, level, tempStr(temp))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// parseUploadPath splits "token/level[/tempTenths]".
func parseUploadPath(path string) (token string, level int, temp *int, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, nil, fmt.Errorf("want 2 or 3 path segments, got %d", len(parts))
	}
	token = parts[0]
	if token == "" {
		return "", 0, nil, errors.New("empty token")
	}
	level, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, nil, fmt.Errorf("level: %w", err)
	}
	if len(parts) == 3 {
		t, terr := strconv.Atoi(parts[2])
		if terr != nil {
			return "", 0, nil, fmt.Errorf("temperature: %w", terr)
		}
		temp = &t
	}
	return token, level, temp, nil
}

func tempStr(t *int) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fC", float64(*t)/10)
}

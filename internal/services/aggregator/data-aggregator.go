package aggregator

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model/messages"
	"github.com/LeonardoBeccarini/waterlevel_station/pkg/mqttbus"
)

// Service buffers raw telemetry per station and periodically publishes the
// windowed mean level, flagged as aggregated, at QoS 1.
type Service struct {
	consumer  mqttbus.IConsumer[messages.TelemetryEvent]
	publisher mqttbus.IPublisher
	buffer    map[string][]messages.TelemetryEvent
	mutex     sync.Mutex
	window    time.Duration
	topicTmpl string // e.g. waterlevel/aggregated/{station}
}

func NewService(consumer mqttbus.IConsumer[messages.TelemetryEvent], publisher mqttbus.IPublisher, window time.Duration, topicTmpl string) *Service {
	if topicTmpl == "" {
		topicTmpl = "waterlevel/aggregated/{station}"
	}
	return &Service{
		consumer:  consumer,
		publisher: publisher,
		buffer:    make(map[string][]messages.TelemetryEvent),
		window:    window,
		topicTmpl: topicTmpl,
	}
}

func (s *Service) messageHandler(_ string, message mqtt.Message) error {
	var evt messages.TelemetryEvent
	if err := json.Unmarshal(message.Payload(), &evt); err != nil {
		log.Printf("aggregator: bad payload: %v", err)
		return err
	}
	if evt.Aggregated || evt.StationID == "" {
		// never feed our own output back into the buffer
		return nil
	}

	s.mutex.Lock()
	s.buffer[evt.StationID] = append(s.buffer[evt.StationID], evt)
	s.mutex.Unlock()
	return nil
}

func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(s.messageHandler)
	go s.consumer.ConsumeMessage(ctx)

	ticker := time.NewTicker(s.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case <-ticker.C:
			s.aggregateAndPublish()
		}
	}
}

func (s *Service) aggregateAndPublish() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for stationID, events := range s.buffer {
		if len(events) == 0 {
			continue
		}
		out := aggregate(stationID, events)

		b, err := json.Marshal(out)
		if err != nil {
			log.Printf("aggregator: marshal error: %v", err)
			continue
		}
		topic := strings.ReplaceAll(s.topicTmpl, "{station}", stationID)
		if err := s.publisher.PublishToQos(topic, 1, false, string(b)); err != nil {
			log.Printf("aggregator: publish error: %v", err)
		} else {
			log.Printf("aggregator: %s mean=%dcm over %d samples", stationID, out.LevelCm, len(events))
		}

		s.buffer[stationID] = events[:0]
	}
}

// aggregate reduces one station's window to its mean level (and mean
// temperature over the samples that carried one).
func aggregate(stationID string, events []messages.TelemetryEvent) messages.TelemetryEvent {
	levelSum, tempSum, tempN := 0, 0, 0
	for _, e := range events {
		levelSum += e.LevelCm
		if e.TempTenths != nil {
			tempSum += *e.TempTenths
			tempN++
		}
	}
	out := messages.TelemetryEvent{
		StationID:  stationID,
		LevelCm:    levelSum / len(events),
		Aggregated: true,
		Timestamp:  time.Now().UTC(),
	}
	if tempN > 0 {
		mean := tempSum / tempN
		out.TempTenths = &mean
	}
	return out
}

package aggregator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model/messages"
)

type fakePublisher struct {
	topics   []string
	qos      []byte
	payloads []string
}

func (f *fakePublisher) PublishMessage(payload string) error {
	return f.PublishToQos("", 0, false, payload)
}

func (f *fakePublisher) PublishToQos(topic string, qos byte, _ bool, payload string) error {
	f.topics = append(f.topics, topic)
	f.qos = append(f.qos, qos)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakePublisher) Close() {}

func tt(v int) *int { return &v }

func TestAggregateMeans(t *testing.T) {
	events := []messages.TelemetryEvent{
		{StationID: "freudensee", LevelCm: 10, TempTenths: tt(120)},
		{StationID: "freudensee", LevelCm: 20},
		{StationID: "freudensee", LevelCm: 33, TempTenths: tt(140)},
	}
	out := aggregate("freudensee", events)
	if out.LevelCm != 21 {
		t.Fatalf("mean level = %d, want 21", out.LevelCm)
	}
	if out.TempTenths == nil || *out.TempTenths != 130 {
		t.Fatalf("mean temp = %v, want 130", out.TempTenths)
	}
	if !out.Aggregated {
		t.Fatal("output must carry the aggregated flag")
	}
}

func TestAggregateAndPublishFlushesBuffer(t *testing.T) {
	pub := &fakePublisher{}
	s := NewService(nil, pub, time.Minute, "")
	s.buffer["freudensee"] = []messages.TelemetryEvent{
		{StationID: "freudensee", LevelCm: 100},
		{StationID: "freudensee", LevelCm: 200},
	}

	s.aggregateAndPublish()

	if len(pub.payloads) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.payloads))
	}
	if pub.topics[0] != "waterlevel/aggregated/freudensee" {
		t.Fatalf("topic = %s", pub.topics[0])
	}
	if pub.qos[0] != 1 {
		t.Fatalf("aggregated output must use QoS 1, got %d", pub.qos[0])
	}
	var out messages.TelemetryEvent
	if err := json.Unmarshal([]byte(pub.payloads[0]), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.LevelCm != 150 {
		t.Fatalf("mean = %d, want 150", out.LevelCm)
	}

	// second tick with an empty buffer publishes nothing
	s.aggregateAndPublish()
	if len(pub.payloads) != 1 {
		t.Fatal("flushed buffer must not republish")
	}
}

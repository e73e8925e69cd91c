package station

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model"
)

func testConfig() Config {
	return Config{
		Direction:       model.DistanceDown,
		Thresholds:      [3]int{10, 5, 2},
		MinDist:         0,
		MaxDist:         400,
		UploadPeriodMin: 10,
		FaultInterval:   20 * time.Minute,
		CycleInterval:   time.Millisecond,
		Contacts:        []string{"+491510000001", "+491510000002"},
	}
}

func newTestStation(t *testing.T, cfg Config, deps Deps) *Station {
	t.Helper()
	if deps.Sleeper == nil {
		deps.Sleeper = &fakeSleeper{}
	}
	s, err := New(cfg, deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestCycleAlertBundlesBroadcastAndUpload(t *testing.T) {
	sms := &fakeSMS{}
	up := &fakeUploader{}
	sensor := &fakeSensor{script: []int{12, 9}}
	sleeper := &fakeSleeper{}

	s := newTestStation(t, testConfig(), Deps{
		Sensor:   sensor,
		Clock:    &fakeClock{minute: 7},
		SMS:      sms,
		Uploader: up,
		Sleeper:  sleeper,
	})

	s.Cycle() // 12: nominal, no transition, startup bucket already served
	if len(sms.sent) != 0 || len(up.uploads) != 0 {
		t.Fatalf("nominal cycle must be quiet, sms=%d uploads=%d", len(sms.sent), len(up.uploads))
	}

	s.Cycle() // 9: crosses T1 in the worsening direction
	if len(sms.sent) != 2 {
		t.Fatalf("alert must broadcast to both contacts, got %d", len(sms.sent))
	}
	if !strings.Contains(sms.sent[0].Body, "Meldestufe 1 erreicht") {
		t.Fatalf("unexpected sms body %q", sms.sent[0].Body)
	}
	if len(up.uploads) != 1 || up.uploads[0].Level != 9 {
		t.Fatalf("transition must bundle one out-of-band upload, got %+v", up.uploads)
	}
	found := false
	for _, d := range sleeper.slept {
		if d == SettleAfterAlert {
			found = true
		}
	}
	if !found {
		t.Fatal("broadcast and upload must be separated by the alert settle delay")
	}
	if s.State() != StateRunning {
		t.Fatalf("state = %s, want running", s.State())
	}
}

func TestCyclePeriodicUpload(t *testing.T) {
	up := &fakeUploader{}
	clk := &fakeClock{minute: 9}
	temp := 123
	sensor := &fakeSensor{script: []int{50}, temp: temp, hasT: true}

	s := newTestStation(t, testConfig(), Deps{
		Sensor:   sensor,
		Clock:    clk,
		SMS:      &fakeSMS{},
		Uploader: up,
	})

	s.Cycle() // minute 9: startup bucket, nothing due
	clk.minute = 10
	s.Cycle()
	s.Cycle() // still minute 10: bucket served
	clk.minute = 11
	s.Cycle()

	if len(up.uploads) != 1 {
		t.Fatalf("uploads = %d, want exactly one for the minute-10 bucket", len(up.uploads))
	}
	if up.uploads[0].Temp == nil || *up.uploads[0].Temp != temp {
		t.Fatalf("temperature must ride along, got %+v", up.uploads[0].Temp)
	}
}

func TestSensorFaultHaltsLoop(t *testing.T) {
	sms := &fakeSMS{}
	up := &fakeUploader{}
	now := newFakeNow()
	sensor := &fakeSensor{script: []int{0}} // HC-SR04 timeout reads as 0

	s := newTestStation(t, testConfig(), Deps{
		Sensor:   sensor,
		Clock:    &fakeClock{minute: 3},
		SMS:      sms,
		Uploader: up,
		Now:      now.now,
	})

	s.Cycle() // enters degraded
	now.advance(20 * time.Minute)
	s.Cycle() // escalates

	if s.State() != StateFaulted || s.FaultReason() != model.SensorFault {
		t.Fatalf("state=%s reason=%s, want faulted/sensorFault", s.State(), s.FaultReason())
	}
	if len(sms.sent) != 1 || sms.sent[0].Number != "+491510000001" {
		t.Fatalf("sensor fault warns the admin number once, got %+v", sms.sent)
	}
	if len(up.uploads) != 0 {
		t.Fatal("no uploads while the sensor is down")
	}

	// terminal: further cycles do nothing
	s.Cycle()
	if len(sms.sent) != 1 {
		t.Fatal("faulted station must stop acting")
	}
}

func TestRunHaltsOnMissingClock(t *testing.T) {
	sms := &fakeSMS{}
	s := newTestStation(t, testConfig(), Deps{
		Sensor:   &fakeSensor{script: []int{50}},
		Clock:    nil, // RTC failed to initialize
		SMS:      sms,
		Uploader: &fakeUploader{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	if s.State() != StateFaulted || s.FaultReason() != model.ClockFault {
		t.Fatalf("state=%s reason=%s, want faulted/clockFault", s.State(), s.FaultReason())
	}
	if len(sms.sent) != 1 || !strings.Contains(sms.sent[0].Body, "RTC") {
		t.Fatalf("clock fault warns the admin once, got %+v", sms.sent)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := newTestStation(t, testConfig(), Deps{
		Sensor:   &fakeSensor{script: []int{50}},
		Clock:    &fakeClock{minute: 1},
		SMS:      &fakeSMS{},
		Uploader: &fakeUploader{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

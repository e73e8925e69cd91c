package station

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model"
)

// DistanceSensor is the acquisition hardware as the loop sees it: a raw
// distance per ping, with validity judged against the configured bounds.
type DistanceSensor interface {
	PingDistance() int
	// TemperatureTenths returns tenths of a degree Celsius; ok=false when no
	// probe is wired up.
	TemperatureTenths() (int, bool)
}

// Clock is the RTC surface the loop needs: only the minute-of-hour, used to
// gate periodic uploads.
type Clock interface {
	MinuteOfHour() int
}

// State of the station loop. Faulted is terminal and observable; the
// original firmware spun forever instead.
type State int

const (
	StateRunning State = iota
	StateFaulted
)

func (s State) String() string {
	if s == StateFaulted {
		return "faulted"
	}
	return "running"
}

// Config is the static per-run station configuration, loaded before the
// loop starts.
type Config struct {
	Direction  model.Direction
	Reference  int    // sensor-to-reference offset (level-up variants)
	Thresholds [3]int // severity 1..3
	MinDist    int
	MaxDist    int

	UploadPeriodMin int
	FaultInterval   time.Duration
	CycleInterval   time.Duration

	Contacts []string
}

// Deps are the station's peripheral collaborators. Clock may be nil when the
// RTC failed to initialize; Run then halts with ClockFault before sampling.
// Sleeper and Now default to the real clock.
type Deps struct {
	Sensor   DistanceSensor
	Clock    Clock
	SMS      SMSSender
	Uploader Uploader
	Sleeper  Sleeper
	Now      func() time.Time
}

// Station is the top-level driver: one sampling cycle runs to completion
// before the next begins, and all shared state is owned by this single loop.
type Station struct {
	cfg        Config
	sensor     DistanceSensor
	clock      Clock
	notifier   *Notifier
	uploader   Uploader
	conv       Converter
	thresholds *ThresholdSet
	faults     *FaultMonitor
	sched      *UploadScheduler
	sleep      Sleeper

	state       State
	faultReason model.MessageCode
}

func New(cfg Config, deps Deps) (*Station, error) {
	if deps.Sensor == nil {
		return nil, errors.New("distance sensor is nil")
	}
	if deps.Uploader == nil {
		return nil, errors.New("uploader is nil")
	}
	if cfg.MaxDist <= cfg.MinDist {
		return nil, fmt.Errorf("invalid distance bounds [%d,%d]", cfg.MinDist, cfg.MaxDist)
	}
	if deps.Sleeper == nil {
		deps.Sleeper = RealSleeper()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = DefaultCycleInterval
	}
	notifier, err := NewNotifier(deps.SMS, cfg.Contacts)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}
	thresholds, err := NewThresholdSet(cfg.Direction, cfg.Thresholds[0], cfg.Thresholds[1], cfg.Thresholds[2])
	if err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	return &Station{
		cfg:        cfg,
		sensor:     deps.Sensor,
		clock:      deps.Clock,
		notifier:   notifier,
		uploader:   deps.Uploader,
		conv:       NewConverter(cfg.Direction, cfg.Reference),
		thresholds: thresholds,
		faults:     NewFaultMonitor(cfg.FaultInterval, deps.Now),
		sleep:      deps.Sleeper,
	}, nil
}

// Run drives the loop until the context is cancelled or the station reaches
// the Faulted state. A nil clock is the fatal RTC startup condition: one
// admin SMS, then halt before the first sample.
func (s *Station) Run(ctx context.Context) {
	s.sleep.Sleep(SettleBoot) // modem warm-up

	if s.clock == nil {
		s.notifier.NotifyAdmin(model.ClockFault, 0)
		s.fail(model.ClockFault)
		return
	}

	for s.state == StateRunning {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.Cycle()
		s.sleep.Sleep(s.cfg.CycleInterval)
	}
}

// Cycle runs one sample → validate → fault-check → threshold-check →
// maybe-notify → maybe-upload pass. Exported so tests can step the loop.
func (s *Station) Cycle() {
	if s.state == StateFaulted {
		return
	}

	raw := s.sensor.PingDistance()
	valid := raw > s.cfg.MinDist && raw < s.cfg.MaxDist
	log.Printf("station: raw=%d valid=%t", raw, valid)

	if !valid {
		if s.faults.Observe(false) {
			s.notifier.NotifyAdmin(model.SensorFault, 0)
			s.fail(model.SensorFault)
		}
		return
	}
	s.faults.Observe(true)

	level := s.conv.Level(raw)
	temp := s.readTemp()
	log.Printf("station: level=%dcm fault=%s", level, s.faults.State())

	if tr, ok := s.thresholds.Evaluate(level); ok {
		log.Printf("station: transition %s severity=%d level=%dcm", tr.Code, tr.Severity, level)
		s.notifier.Broadcast(tr.Code, level)
		s.sleep.Sleep(SettleAfterAlert)
		// a threshold transition always bundles an out-of-band upload
		if err := s.uploader.Upload(level, temp); err != nil {
			log.Printf("station: transition upload error: %v", err)
		}
	}

	if s.sched == nil {
		s.sched = NewUploadScheduler(s.uploader, s.cfg.UploadPeriodMin, s.clock.MinuteOfHour())
	}
	if s.sched.MaybeUpload(s.clock.MinuteOfHour(), level, temp) {
		log.Printf("station: periodic upload level=%dcm minute=%d", level, s.clock.MinuteOfHour())
	}
}

// State reports whether the loop is still advancing. Faulted is cleared only
// by a restart.
func (s *Station) State() State { return s.state }

// FaultReason is meaningful once State() == StateFaulted.
func (s *Station) FaultReason() model.MessageCode { return s.faultReason }

func (s *Station) fail(code model.MessageCode) {
	s.state = StateFaulted
	s.faultReason = code
	log.Printf("station: FAULTED reason=%s, manual restart required", code)
}

func (s *Station) readTemp() *int {
	t, ok := s.sensor.TemperatureTenths()
	if !ok || t == model.TempDisconnected {
		return nil
	}
	return &t
}

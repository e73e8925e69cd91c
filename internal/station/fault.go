package station

import "time"

// FaultState describes the sensor health as seen by the monitor.
type FaultState int

const (
	FaultNominal FaultState = iota
	FaultDegraded
	FaultEscalated
)

func (s FaultState) String() string {
	switch s {
	case FaultNominal:
		return "nominal"
	case FaultDegraded:
		return "degraded"
	case FaultEscalated:
		return "escalated"
	}
	return "unknown"
}

// FaultMonitor tracks a contiguous run of invalid readings against the fault
// interval. Time comes from an injected now func and relies on Go's
// monotonic clock, so counter wraparound cannot occur.
type FaultMonitor struct {
	interval  time.Duration
	now       func() time.Time
	degraded  bool
	since     time.Time
	escalated bool
}

func NewFaultMonitor(interval time.Duration, now func() time.Time) *FaultMonitor {
	if interval <= 0 {
		interval = DefaultFaultInterval
	}
	if now == nil {
		now = time.Now
	}
	return &FaultMonitor{interval: interval, now: now}
}

// Observe feeds one sample's validity. It returns true exactly once, the
// moment the invalid run reaches the fault interval; a single valid sample
// at any earlier point resets the timer.
func (m *FaultMonitor) Observe(valid bool) bool {
	if valid {
		m.degraded = false
		return false
	}
	if m.escalated {
		return false
	}
	if !m.degraded {
		m.degraded = true
		m.since = m.now()
		return false
	}
	if m.now().Sub(m.since) >= m.interval {
		m.escalated = true
		return true
	}
	return false
}

func (m *FaultMonitor) State() FaultState {
	switch {
	case m.escalated:
		return FaultEscalated
	case m.degraded:
		return FaultDegraded
	default:
		return FaultNominal
	}
}

package sensor

import (
	"math"
	"math/rand"
	"sync"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model"
)

// ====== Tunables ======
const (
	// stepSigma: spread of the per-ping random walk, in cm.
	stepSigma = 0.4

	// surgeProb: chance per ping of a sudden rise of the water (distance
	// shrinking fast), to exercise the threshold chain in bench runs.
	surgeProb = 0.002
	surgeCm   = 15.0

	// tempSigma: spread of the temperature wander, in °C per ping.
	tempSigma = 0.02
)

// Simulator produces distance readings without hardware: a bounded random
// walk with occasional surges and a configurable dropout rate yielding
// out-of-range samples, like an HC-SR04 timing out.
type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	value   float64
	min     int
	max     int
	dropout float64
	temp    float64
	hasTemp bool
}

// NewSimulator starts the walk at start cm between the validity bounds.
// dropout in [0..1] is the fraction of pings that time out and read as 0.
func NewSimulator(start, min, max int, dropout float64, seed int64) *Simulator {
	return &Simulator{
		rng:     rand.New(rand.NewSource(seed)),
		value:   float64(start),
		min:     min,
		max:     max,
		dropout: clamp(dropout, 0, 1),
		temp:    12.0,
		hasTemp: true,
	}
}

// DisableTemperature makes the simulator behave like a station without a
// probe: the sensor reports the disconnected sentinel.
func (s *Simulator) DisableTemperature() {
	s.mu.Lock()
	s.hasTemp = false
	s.mu.Unlock()
}

func (s *Simulator) PingDistance() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() < s.dropout {
		return 0 // sonar timeout reads as zero distance
	}
	step := s.rng.NormFloat64() * stepSigma
	if s.rng.Float64() < surgeProb {
		step -= surgeCm
	}
	s.value = clamp(s.value+step, float64(s.min+1), float64(s.max-1))
	return int(math.Round(s.value))
}

func (s *Simulator) TemperatureTenths() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasTemp {
		return model.TempDisconnected, false
	}
	s.temp += s.rng.NormFloat64() * tempSigma
	return int(math.Round(s.temp * 10)), true
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

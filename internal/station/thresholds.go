package station

import (
	"fmt"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model"
)

// Transition is one edge of the threshold state machine: an alert entered or
// cleared for a given severity.
type Transition struct {
	Code     model.MessageCode
	Severity int
	Entered  bool
}

// ThresholdSet holds the three critical levels and their alert flags. The
// evaluation is a priority chain, most severe first, so at most one
// transition fires per sampling cycle.
type ThresholdSet struct {
	dir    model.Direction
	levels [3]int // index 0 = severity 1
	active [3]bool
}

// NewThresholdSet validates the threshold ordering against the crossing
// convention: severity must grow in the worsening direction.
func NewThresholdSet(dir model.Direction, t1, t2, t3 int) (*ThresholdSet, error) {
	switch dir {
	case model.DistanceDown:
		if !(t1 > t2 && t2 > t3) {
			return nil, fmt.Errorf("distance-down thresholds must satisfy t1>t2>t3, got %d,%d,%d", t1, t2, t3)
		}
	case model.LevelUp:
		if !(t1 < t2 && t2 < t3) {
			return nil, fmt.Errorf("level-up thresholds must satisfy t1<t2<t3, got %d,%d,%d", t1, t2, t3)
		}
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}
	return &ThresholdSet{dir: dir, levels: [3]int{t1, t2, t3}}, nil
}

// Evaluate feeds one valid level through the chain. Enter checks run from
// severity 3 down to 1, then clear checks in the same order; the first match
// flips its flag and wins the cycle.
func (t *ThresholdSet) Evaluate(level int) (Transition, bool) {
	for sev := 3; sev >= 1; sev-- {
		if t.dir.Worse(level, t.levels[sev-1]) && !t.active[sev-1] {
			t.active[sev-1] = true
			return Transition{Code: model.AlertCode(sev), Severity: sev, Entered: true}, true
		}
	}
	for sev := 3; sev >= 1; sev-- {
		if !t.dir.Worse(level, t.levels[sev-1]) && t.active[sev-1] {
			t.active[sev-1] = false
			return Transition{Code: model.ClearCode(sev), Severity: sev, Entered: false}, true
		}
	}
	return Transition{}, false
}

// Active reports the alert flag for a severity 1..3.
func (t *ThresholdSet) Active(severity int) bool { return t.active[severity-1] }

package station

import "github.com/LeonardoBeccarini/waterlevel_station/internal/model"

// Converter turns a raw distance reading into the water level. Which linear
// transform applies depends on the station variant, expressed through the
// configured direction rather than per-variant code.
type Converter struct {
	dir       model.Direction
	reference int // sensor-to-reference offset, used by level-up variants
}

func NewConverter(dir model.Direction, reference int) Converter {
	return Converter{dir: dir, reference: reference}
}

// Level converts a raw reading. The caller must have gated validity; the
// result for an invalid reading is meaningless.
func (c Converter) Level(raw int) int {
	if c.dir == model.LevelUp {
		return c.reference - raw
	}
	// distance-down variants report the remaining distance itself
	return raw
}

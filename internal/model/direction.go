package model

import "fmt"

// Direction is the crossing convention of a station variant. The Freudensee
// transmitter measures distance under a footbridge, so a *smaller* value
// means higher water; other variants report an absolute level where a
// *larger* value is worse. One knob, one code path.
type Direction string

const (
	// DistanceDown: raw value is the remaining distance to the reference
	// point, danger grows as it shrinks.
	DistanceDown Direction = "distance-down"
	// LevelUp: value is the water level itself, danger grows with it.
	LevelUp Direction = "level-up"
)

// Worse reports whether level is at or past threshold in the worsening
// direction (inclusive, mirroring the original <=/>= chain).
func (d Direction) Worse(level, threshold int) bool {
	if d == DistanceDown {
		return level <= threshold
	}
	return level >= threshold
}

// ParseDirection validates a config string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DistanceDown, LevelUp:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q (want %q or %q)", s, DistanceDown, LevelUp)
}

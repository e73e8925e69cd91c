package station

import (
	"testing"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model"
)

func TestLevelConversion(t *testing.T) {
	tests := []struct {
		name string
		dir  model.Direction
		ref  int
		raw  int
		want int
	}{
		{"distance-down is identity", model.DistanceDown, 0, 42, 42},
		{"distance-down small raw", model.DistanceDown, 0, 2, 2},
		{"level-up subtracts from reference", model.LevelUp, 400, 150, 250},
		{"level-up at reference", model.LevelUp, 400, 400, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConverter(tt.dir, tt.ref)
			if got := c.Level(tt.raw); got != tt.want {
				t.Fatalf("Level(%d) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

package station

import (
	"fmt"
	"time"
)

// SystemClock backs the Clock interface with the host's wall clock, for
// stations that run without a battery-backed RTC.
type SystemClock struct{}

// NewSystemClock fails when the host clock is obviously unset (a dead RTC
// battery leaves embedded boards in 1970), which is the fatal startup
// condition the loop turns into ClockFault.
func NewSystemClock() (*SystemClock, error) {
	if y := time.Now().Year(); y < 2020 {
		return nil, fmt.Errorf("system clock not set (year %d)", y)
	}
	return &SystemClock{}, nil
}

func (*SystemClock) MinuteOfHour() int { return time.Now().Minute() }

package station

import "time"

// Timing policy of the station. The original firmware buried these settle
// delays inside its I/O helpers; here they live in one table and all waiting
// goes through a Sleeper, so tests run without real waits.
const (
	// SettleCommand follows every plain AT command.
	SettleCommand = 500 * time.Millisecond
	// SettleGPRSAttach follows AT+SAPBR=1,1 (bearer open).
	SettleGPRSAttach = 3 * time.Second
	// SettleBearerQuery follows AT+SAPBR=2,1 (IP check).
	SettleBearerQuery = 2 * time.Second
	// SettleHTTPAction is the window granted to AT+HTTPACTION=0.
	SettleHTTPAction = 5 * time.Second
	// SettleAfterAlert separates an SMS broadcast from the bundled upload.
	SettleAfterAlert = 10 * time.Second
	// SettleBoot is the modem warm-up pause at startup.
	SettleBoot = 10 * time.Second

	DefaultCycleInterval = 500 * time.Millisecond
	DefaultFaultInterval = 20 * time.Minute
)

// Sleeper abstracts blocking waits between peripheral commands.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// RealSleeper waits on the wall clock.
func RealSleeper() Sleeper { return realSleeper{} }

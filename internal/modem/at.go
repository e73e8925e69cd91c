package modem

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/station"
)

// Port is the serial line to the SIM800L. Drain discards whatever the modem
// sent back; responses are never parsed, the transport is fire-and-forget.
type Port interface {
	io.Writer
	Drain()
}

// Modem drives a SIM800L with raw AT commands, honoring the settle delay
// each command needs before the next one may follow.
type Modem struct {
	port  Port
	sleep station.Sleeper
}

func New(port Port, sleep station.Sleeper) *Modem {
	if sleep == nil {
		sleep = station.RealSleeper()
	}
	return &Modem{port: port, sleep: sleep}
}

// cmd writes one AT command line, waits out its settle delay and drains the
// response bytes.
func (m *Modem) cmd(c string, settle time.Duration) error {
	if _, err := io.WriteString(m.port, c+"\r\n"); err != nil {
		return fmt.Errorf("modem: write %q: %w", c, err)
	}
	m.sleep.Sleep(settle)
	m.port.Drain()
	return nil
}

// SerialPort adapts a tty device file to the Port interface. The line
// discipline (9600 8N1 on the original hardware) is assumed configured by
// the OS before the process starts.
type SerialPort struct {
	f *os.File
}

func OpenSerial(dev string) (*SerialPort, error) {
	f, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("modem: open %s: %w", dev, err)
	}
	return &SerialPort{f: f}, nil
}

func (p *SerialPort) Write(b []byte) (int, error) { return p.f.Write(b) }

// Drain reads and discards pending modem output. Bounded by a short read
// deadline so an idle line never blocks the loop.
func (p *SerialPort) Drain() {
	if err := p.f.SetReadDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
		return
	}
	buf := make([]byte, 256)
	for {
		n, err := p.f.Read(buf)
		if err != nil || n == 0 {
			return
		}
	}
}

func (p *SerialPort) Close() error { return p.f.Close() }

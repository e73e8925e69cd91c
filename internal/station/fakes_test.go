package station

import (
	"errors"
	"sync"
	"time"
)

var errTransport = errors.New("transport down")

type smsRecord struct {
	Number string
	Body   string
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []smsRecord
	err  error
}

func (f *fakeSMS) SendSMS(number, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, smsRecord{Number: number, Body: body})
	return f.err
}

type uploadRecord struct {
	Level int
	Temp  *int
}

type fakeUploader struct {
	uploads []uploadRecord
	err     error
}

func (f *fakeUploader) Upload(level int, temp *int) error {
	f.uploads = append(f.uploads, uploadRecord{Level: level, Temp: temp})
	return f.err
}

// fakeSensor replays a scripted sequence of raw distances; the last value
// repeats once the script runs out.
type fakeSensor struct {
	script []int
	pos    int
	temp   int
	hasT   bool
}

func (f *fakeSensor) PingDistance() int {
	if f.pos < len(f.script) {
		v := f.script[f.pos]
		f.pos++
		return v
	}
	if len(f.script) == 0 {
		return 0
	}
	return f.script[len(f.script)-1]
}

func (f *fakeSensor) TemperatureTenths() (int, bool) { return f.temp, f.hasT }

type fakeClock struct{ minute int }

func (f *fakeClock) MinuteOfHour() int { return f.minute }

type fakeSleeper struct{ slept []time.Duration }

func (f *fakeSleeper) Sleep(d time.Duration) { f.slept = append(f.slept, d) }

// fakeNow is an advanceable clock for the fault monitor.
type fakeNow struct{ t time.Time }

func newFakeNow() *fakeNow { return &fakeNow{t: time.Unix(1_700_000_000, 0)} }

func (f *fakeNow) now() time.Time          { return f.t }
func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

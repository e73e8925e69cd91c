package modem

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/station"
)

type fakePort struct {
	buf    bytes.Buffer
	drains int
}

func (f *fakePort) Write(b []byte) (int, error) { return f.buf.Write(b) }
func (f *fakePort) Drain()                      { f.drains++ }

type fakeSleeper struct{ slept []time.Duration }

func (f *fakeSleeper) Sleep(d time.Duration) { f.slept = append(f.slept, d) }

func lines(f *fakePort) []string {
	raw := strings.Split(f.buf.String(), "\r\n")
	out := raw[:0]
	for _, l := range raw {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestSendSMSSequence(t *testing.T) {
	port := &fakePort{}
	sl := &fakeSleeper{}
	m := New(port, sl)

	if err := m.SendSMS("+491510000001", "Wasserstand: 42 cm"); err != nil {
		t.Fatalf("SendSMS: %v", err)
	}

	got := lines(port)
	if len(got) != 3 {
		t.Fatalf("wrote %d lines, want 3: %q", len(got), got)
	}
	if got[0] != "AT+CMGF=1" {
		t.Fatalf("text mode first, got %q", got[0])
	}
	if got[1] != `AT+CMGS="+491510000001"` {
		t.Fatalf("unexpected CMGS line %q", got[1])
	}
	if !strings.HasPrefix(got[2], "Wasserstand: 42 cm") || !strings.HasSuffix(got[2], string(rune(ctrlZ))) {
		t.Fatalf("body must end with ^Z, got %q", got[2])
	}
	if len(sl.slept) == 0 || sl.slept[0] != station.SettleCommand {
		t.Fatalf("missing settle before the command burst: %v", sl.slept)
	}
}

func TestUploadSequence(t *testing.T) {
	port := &fakePort{}
	m := New(port, &fakeSleeper{})
	up, err := NewGPRSUploader(m, UploadConfig{
		APN:       "internet.t-mobile",
		ServerURL: "https://example.org/level",
		Token:     "s3cret",
	})
	if err != nil {
		t.Fatalf("NewGPRSUploader: %v", err)
	}

	if err := up.Upload(42, nil); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	want := []string{
		`AT+SAPBR=3,1,"Contype","GPRS"`,
		`AT+CSTT="internet.t-mobile","",""`,
		"AT+SAPBR=1,1",
		"AT+SAPBR=2,1",
		"AT+HTTPINIT",
		"AT+HTTPSSL=1",
		`AT+HTTPPARA="CID",1`,
		`AT+HTTPPARA="URL","https://example.org/level/s3cret/42"`,
		"AT+HTTPACTION=0",
		"AT+HTTPTERM",
		"AT+SAPBR=0,1",
	}
	got := lines(port)
	if len(got) != len(want) {
		t.Fatalf("wrote %d commands, want %d:\n%q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("command %d = %q, want %q", i, got[i], want[i])
		}
	}
	if port.drains != len(want) {
		t.Fatalf("every command drains the line, drains=%d", port.drains)
	}
}

func TestBuildUploadURL(t *testing.T) {
	temp := 123
	tests := []struct {
		base string
		temp *int
		want string
	}{
		{"https://srv/x", nil, "https://srv/x/tok/42"},
		{"https://srv/x/", nil, "https://srv/x/tok/42"},
		{"https://srv/x", &temp, "https://srv/x/tok/42/123"},
	}
	for _, tt := range tests {
		if got := BuildUploadURL(tt.base, "tok", 42, tt.temp); got != tt.want {
			t.Fatalf("BuildUploadURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

package modem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/station"
)

// UploadConfig holds the GPRS access data and the server endpoint of a
// station variant.
type UploadConfig struct {
	APN         string
	APNUser     string
	APNPassword string
	ServerURL   string // base URL, token and values are path-appended
	Token       string // shared secret embedded in the path
}

// GPRSUploader performs the station's HTTP GET upload through the modem:
// bearer up, HTTP session, one GET, teardown. One call per telemetry sample.
type GPRSUploader struct {
	m   *Modem
	cfg UploadConfig
}

func NewGPRSUploader(m *Modem, cfg UploadConfig) (*GPRSUploader, error) {
	if m == nil {
		return nil, errors.New("modem is nil")
	}
	if cfg.ServerURL == "" || cfg.Token == "" {
		return nil, errors.New("server url and token are required")
	}
	return &GPRSUploader{m: m, cfg: cfg}, nil
}

// Upload pushes one sample. The HTTPACTION outcome is never read back; a
// transport failure is indistinguishable from success at this layer.
func (u *GPRSUploader) Upload(levelCm int, tempTenths *int) error {
	if err := u.attachGPRS(); err != nil {
		return err
	}
	if err := u.initHTTP(); err != nil {
		return err
	}
	url := BuildUploadURL(u.cfg.ServerURL, u.cfg.Token, levelCm, tempTenths)
	if err := u.m.cmd(fmt.Sprintf("AT+HTTPPARA=\"URL\",%q", url), station.SettleCommand); err != nil {
		return err
	}
	if err := u.m.cmd("AT+HTTPACTION=0", station.SettleHTTPAction); err != nil {
		return err
	}
	return u.terminate()
}

func (u *GPRSUploader) attachGPRS() error {
	if err := u.m.cmd(`AT+SAPBR=3,1,"Contype","GPRS"`, station.SettleCommand); err != nil {
		return err
	}
	if err := u.m.cmd(fmt.Sprintf("AT+CSTT=%q,%q,%q", u.cfg.APN, u.cfg.APNUser, u.cfg.APNPassword), station.SettleCommand); err != nil {
		return err
	}
	if err := u.m.cmd("AT+SAPBR=1,1", station.SettleGPRSAttach); err != nil {
		return err
	}
	// querying the bearer for an IP; skipping this makes the SIM800L flaky
	return u.m.cmd("AT+SAPBR=2,1", station.SettleBearerQuery)
}

func (u *GPRSUploader) initHTTP() error {
	if err := u.m.cmd("AT+HTTPINIT", station.SettleCommand); err != nil {
		return err
	}
	if err := u.m.cmd("AT+HTTPSSL=1", station.SettleCommand); err != nil {
		return err
	}
	return u.m.cmd(`AT+HTTPPARA="CID",1`, station.SettleCommand)
}

func (u *GPRSUploader) terminate() error {
	if err := u.m.cmd("AT+HTTPTERM", station.SettleCommand); err != nil {
		return err
	}
	return u.m.cmd("AT+SAPBR=0,1", station.SettleCommand)
}

// BuildUploadURL path-encodes the shared token, the level and optionally the
// temperature, "/"-delimited. No schema versioning, no acknowledgement.
func BuildUploadURL(base, token string, levelCm int, tempTenths *int) string {
	url := strings.TrimRight(base, "/") + "/" + token + "/" + strconv.Itoa(levelCm)
	if tempTenths != nil {
		url += "/" + strconv.Itoa(*tempTenths)
	}
	return url
}

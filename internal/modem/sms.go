package modem

import (
	"fmt"
	"io"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/station"
)

// ctrlZ tells the SIM800L the SMS body is complete.
const ctrlZ = 0x1a

// SendSMS sends one text-mode SMS. Delivery is never confirmed; a failed
// send looks the same as a successful one.
func (m *Modem) SendSMS(number, body string) error {
	m.sleep.Sleep(station.SettleCommand)
	if err := m.cmd("AT+CMGF=1", station.SettleCommand); err != nil {
		return err
	}
	if err := m.cmd(fmt.Sprintf("AT+CMGS=%q", number), station.SettleCommand); err != nil {
		return err
	}
	if _, err := io.WriteString(m.port, body); err != nil {
		return fmt.Errorf("modem: write sms body: %w", err)
	}
	if _, err := m.port.Write([]byte{ctrlZ}); err != nil {
		return fmt.Errorf("modem: terminate sms: %w", err)
	}
	return nil
}

package model

import "fmt"

// MessageCode identifies one of the fixed operator texts the station can
// send over SMS.
type MessageCode int

const (
	LevelReport MessageCode = iota
	Alert1
	Alert2
	Alert3
	Clear1
	Clear2
	Clear3
	SensorFault
	ClockFault
)

// German operator texts from the original transmitter station. The firmware
// never interpolated the measured level into them; here %d carries it.
var messageTexts = map[MessageCode]string{
	LevelReport: "Wasserstand: %d cm",
	Alert1:      "Meldestufe 1 erreicht!!!\nWasserstand: %d cm",
	Alert2:      "Meldestufe 2 erreicht!!!\nWasserstand: %d cm",
	Alert3:      "Wir saufen ab!!! Meldestufe 3 erreicht!!!\nWasserstand: %d cm",
	Clear1:      "Meldestufe 1 aufgehoben!!!\nWasserstand: %d cm",
	Clear2:      "Meldestufe 2 aufgehoben!!!\nWasserstand: %d cm",
	Clear3:      "Meldestufe 3 aufgehoben!!!\nWasserstand: %d cm",
	SensorFault: "Fehler mit dem Ultraschallsensor bitte überprüfen!",
	ClockFault:  "Fehler mit dem RTC-Modul bitte überprüfen!",
}

func (c MessageCode) String() string {
	switch c {
	case LevelReport:
		return "levelReport"
	case Alert1, Alert2, Alert3:
		return fmt.Sprintf("alert%d", int(c-Alert1)+1)
	case Clear1, Clear2, Clear3:
		return fmt.Sprintf("clear%d", int(c-Clear1)+1)
	case SensorFault:
		return "sensorFault"
	case ClockFault:
		return "clockFault"
	default:
		return fmt.Sprintf("messageCode(%d)", int(c))
	}
}

// AlertCode maps a severity 1..3 to its enter code.
func AlertCode(severity int) MessageCode { return Alert1 + MessageCode(severity-1) }

// ClearCode maps a severity 1..3 to its clear code.
func ClearCode(severity int) MessageCode { return Clear1 + MessageCode(severity-1) }

// RenderMessage returns the SMS body for a code. Fault texts carry no level.
func RenderMessage(code MessageCode, level int) string {
	tmpl, ok := messageTexts[code]
	if !ok {
		return fmt.Sprintf("Unbekannter Code %d", int(code))
	}
	if code == SensorFault || code == ClockFault {
		return tmpl
	}
	return fmt.Sprintf(tmpl, level)
}

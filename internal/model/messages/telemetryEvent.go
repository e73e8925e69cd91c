package messages

import "time"

// TelemetryEvent holds both real-time and aggregated water-level data as it
// travels over MQTT between ingest and the aggregator.
type TelemetryEvent struct {
	StationID  string    `json:"station_id"`
	LevelCm    int       `json:"level_cm"`
	TempTenths *int      `json:"temp_tenths,omitempty"`
	Aggregated bool      `json:"aggregated"`
	Timestamp  time.Time `json:"timestamp"`
}

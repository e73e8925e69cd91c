package ingest

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model/messages"
)

// TelemetryToPoint normalizes a TelemetryEvent into a *write.Point.
func TelemetryToPoint(evt messages.TelemetryEvent) *write.Point {
	tags := map[string]string{
		"station_id": evt.StationID,
	}
	fields := map[string]interface{}{
		"level_cm": int64(evt.LevelCm),
	}
	if evt.TempTenths != nil {
		fields["temp_c"] = float64(*evt.TempTenths) / 10.0
	}
	return influxdb2.NewPoint("water_level", tags, fields, evt.Timestamp)
}

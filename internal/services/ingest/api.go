package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Level is the payload the gateway consumes.
type Level struct {
	StationID string `json:"station_id,omitempty"`
	LevelCm   int    `json:"level_cm"`
	Time      string `json:"time"` // RFC3339
}

// Stats summarizes a window of levels for the dashboard.
type Stats struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

type queryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseQuery(r *http.Request, defMin, defLim, defTOms int) queryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return queryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

func buildFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == "water_level")
  |> filter(fn: (r) => r._field == "level_cm")
  |> keep(columns: ["_time","_value","station_id"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, limit)
}

func queryLevels(ctx context.Context, influx influxdb2.Client, org, bucket string, minutes, limit int) ([]Level, error) {
	api := influx.QueryAPI(org)
	res, err := api.Query(ctx, buildFlux(bucket, minutes, limit))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Close() }()

	out := make([]Level, 0, limit)
	for res.Next() {
		rec := res.Record()

		var level int
		switch v := rec.Value().(type) {
		case int64:
			level = int(v)
		case float64:
			level = int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				level = n
			}
		}

		var stationID string
		if v := rec.ValueByKey("station_id"); v != nil {
			if s, ok := v.(string); ok {
				stationID = s
			}
		}

		out = append(out, Level{
			StationID: stationID,
			LevelCm:   level,
			Time:      rec.Time().UTC().Format(time.RFC3339),
		})
	}
	return out, res.Err()
}

// NewLatestLevelsHandler serves GET /levels/latest?limit=20[&minutes=1440].
func NewLatestLevelsHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := parseQuery(r, 1440, 20, 2000)
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
		defer cancel()

		out, err := queryLevels(ctx, influx, org, bucket, p.Minutes, p.Limit)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.Header().Set("X-Error", "influx-query-error")
			_, _ = w.Write([]byte("[]"))
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}

// NewStatsHandler serves GET /levels/stats?minutes=1440. The window is
// bounded, so the reduction happens here rather than in Flux.
func NewStatsHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := parseQuery(r, 1440, 500, 2000)
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
		defer cancel()

		levels, err := queryLevels(ctx, influx, org, bucket, p.Minutes, p.Limit)
		w.Header().Set("Content-Type", "application/json")
		if err != nil || len(levels) == 0 {
			if err != nil {
				w.Header().Set("X-Error", "influx-query-error")
			}
			_ = json.NewEncoder(w).Encode(Stats{})
			return
		}
		_ = json.NewEncoder(w).Encode(computeStats(levels))
	})
}

func computeStats(levels []Level) Stats {
	sum := 0
	min, max := levels[0].LevelCm, levels[0].LevelCm
	for _, l := range levels {
		sum += l.LevelCm
		if l.LevelCm < min {
			min = l.LevelCm
		}
		if l.LevelCm > max {
			max = l.LevelCm
		}
	}
	return Stats{
		Mean: float64(sum) / float64(len(levels)),
		Max:  float64(max),
		Min:  float64(min),
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/services/ingest"
)

/************* MODELS (DTO verso la dashboard) *************/

type Payload struct {
	Levels []ingest.Level `json:"levels"`
	Stats  ingest.Stats   `json:"stats"`
}

/************* UPSTREAM REST CLIENT *************/

type Upstream struct {
	http *http.Client
}

func NewUpstream(timeoutMs int) *Upstream {
	return &Upstream{
		http: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
	}
}

func (u *Upstream) getJSON(ctx context.Context, url string, out any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := u.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("GET %s -> %s", url, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (u *Upstream) GetLatest(ctx context.Context, base string, limit, minutes int) ([]ingest.Level, error) {
	var out []ingest.Level
	url := fmt.Sprintf("%s/levels/latest?limit=%d&minutes=%d", base, limit, minutes)
	if err := u.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Upstream) GetStats(ctx context.Context, base string, minutes int) (ingest.Stats, error) {
	var out ingest.Stats
	url := fmt.Sprintf("%s/levels/stats?minutes=%d", base, minutes)
	if err := u.getJSON(ctx, url, &out); err != nil {
		return ingest.Stats{}, err
	}
	return out, nil
}

/************* MAIN *************/

var (
	levelsCB *gobreaker.CircuitBreaker
	statsCB  *gobreaker.CircuitBreaker

	lastGoodLevels []ingest.Level
)

func mkCB(name string, fails, openMs, intervalMs int) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: time.Duration(intervalMs) * time.Millisecond,
		Timeout:  time.Duration(openMs) * time.Millisecond,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
}

func main() {
	cfg := loadConfig()

	levelsCB = mkCB("ingest-levels", cfg.CBFails, cfg.CBOpenMs, cfg.CBIntervalMs)
	statsCB = mkCB("ingest-stats", cfg.CBFails, cfg.CBOpenMs, cfg.CBIntervalMs)

	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	http.HandleFunc("/dashboard/data", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(cfg.TimeoutMs)*time.Millisecond)
		defer cancel()

		up := NewUpstream(cfg.TimeoutMs)

		// levels behind a breaker, last-good cache as fallback
		var levels []ingest.Level
		if res, err := levelsCB.Execute(func() (any, error) {
			lv, err := up.GetLatest(ctx, cfg.IngestURL, cfg.LatestLimit, cfg.WindowMinutes)
			if err != nil || len(lv) == 0 {
				if err == nil {
					err = fmt.Errorf("empty levels")
				}
				return nil, err
			}
			return lv, nil
		}); err == nil {
			levels = res.([]ingest.Level)
			lastGoodLevels = levels
		} else {
			levels = lastGoodLevels
		}

		var stats ingest.Stats
		if res, err := statsCB.Execute(func() (any, error) {
			s, err := up.GetStats(ctx, cfg.IngestURL, cfg.WindowMinutes)
			if err != nil {
				return nil, err
			}
			if s == (ingest.Stats{}) {
				return nil, fmt.Errorf("empty stats")
			}
			return s, nil
		}); err == nil {
			stats = res.(ingest.Stats)
		}

		resp := Payload{Levels: levels, Stats: stats}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)

		log.Printf("GET /dashboard/data [%dms] cb[levels]=%v cb[stats]=%v levels=%d",
			time.Since(start).Milliseconds(), levelsCB.State(), statsCB.State(), len(resp.Levels))
	})

	addr := ":" + cfg.Port
	log.Printf("gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthChecker is anything with a Ping: the database, redis, the event bus.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency checked by HealthHandler.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

// HealthReport is the /health response body.
type HealthReport struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// HealthHandler runs every check concurrently under a shared 2s deadline.
// Any failure turns the report "degraded" and the status 503.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		results := make([]CheckResult, len(checks))
		var wg sync.WaitGroup
		for i, c := range checks {
			wg.Go(func() {
				start := time.Now()
				status := "ok"
				if err := c.Checker.Ping(ctx); err != nil {
					status = "unreachable"
				}
				results[i] = CheckResult{Status: status, LatencyMS: time.Since(start).Milliseconds()}
			})
		}
		wg.Wait()

		report := HealthReport{Status: "ok", Checks: make(map[string]CheckResult, len(checks))}
		for i, c := range checks {
			report.Checks[c.Name] = results[i]
			if results[i].Status != "ok" {
				report.Status = "degraded"
			}
		}

		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, report)
	}
}

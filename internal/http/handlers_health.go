package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is a named dependency probe such as a database ping.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler runs every probe concurrently and reports 503 when any fails.
// HEAD requests get the status code only.
func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		var mu sync.Mutex
		results := make(map[string]string, len(checks))
		healthy := true

		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				status := "ok"
				if err := c.Check(ctx); err != nil {
					status = "unavailable"
				}
				mu.Lock()
				results[c.Name] = status
				if status != "ok" {
					healthy = false
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		code, status := http.StatusOK, "ok"
		if !healthy {
			code, status = http.StatusServiceUnavailable, "unavailable"
		}
		if r.Method == http.MethodHead {
			w.WriteHeader(code)
			return
		}
		resp := healthResponse{Status: status}
		if len(results) > 0 {
			resp.Checks = results
		}
		WriteJSON(w, code, resp)
	}
}

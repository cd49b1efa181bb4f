package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// runChecks probes each dependency concurrently with a shared deadline.
func (s *Server) runChecks(ctx context.Context) map[string]checkResult {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	checks := map[string]func(context.Context) error{
		"analyzer": s.analyzer.Ready,
		"agent":    s.agent.Ready,
		"store":    s.sessions.Ping,
	}

	var (
		mu      sync.Mutex
		results = make(map[string]checkResult, len(checks))
		g       errgroup.Group
	)
	for name, check := range checks {
		g.Go(func() error {
			err := check(ctx)
			result := checkResult{Status: "healthy"}
			if err != nil {
				result = checkResult{Status: "unhealthy", Message: err.Error()}
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func healthy(results map[string]checkResult) bool {
	for _, r := range results {
		if r.Status != "healthy" {
			return false
		}
	}
	return true
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	results := s.runChecks(r.Context())

	if !healthy(results) {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ready":  false,
			"checks": results,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ready":     true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results := s.runChecks(r.Context())

	status := "healthy"
	if !healthy(results) {
		status = "unhealthy"
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         status,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": time.Since(s.started).Seconds(),
		"version":        s.cfg.Version,
		"checks":         results,
	})
}

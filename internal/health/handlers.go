package health

import (
	"context"
	"net/http"
	"time"

	"github.com/ruangkerja/backend-ruang/internal/common"
)

const (
	defaultDBTimeout    = 500 * time.Millisecond
	defaultRedisTimeout = 300 * time.Millisecond
)

// Checker probes the process dependencies for readiness.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler serves the liveness and readiness endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live answers as long as the process can serve requests at all.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready probes every dependency and reports per-component status. Any
// failing component makes the endpoint answer 503.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	report := map[string]string{
		"db":    statusOf(h.Checker.PingDB(ctx, orDefault(h.DBTimeout, defaultDBTimeout))),
		"redis": statusOf(h.Checker.PingRedis(ctx, orDefault(h.RedisTimeout, defaultRedisTimeout))),
	}

	code := http.StatusOK
	for _, status := range report {
		if status != "ok" {
			code = http.StatusServiceUnavailable
			break
		}
	}
	common.JSON(w, code, report)
}

func statusOf(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

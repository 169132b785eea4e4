package health

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/json"
)

var (
	startTime       = time.Now()
	healthy   int32 = 1 // 1: healthy, 0 = unhealthy
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetHealth reports the service status, including uptime and the current
// timestamp. Served on /api/health, /healthz, /ready and /live.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&healthy) == 0 {
		json.Write(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
		})
		return
	}

	json.Write(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	})
}

// SetUnhealthy flips the health flag, used during shutdown so load
// balancers stop routing to this instance.
func SetUnhealthy() {
	atomic.StoreInt32(&healthy, 0)
}

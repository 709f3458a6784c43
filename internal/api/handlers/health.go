package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

type HealthHandler struct {
	redis *redis.Client
	probe *speech.Probe
}

// NewHealthHandler accepts a nil redis client when caching is disabled.
func NewHealthHandler(rdb *redis.Client, probe *speech.Probe) *HealthHandler {
	return &HealthHandler{redis: rdb, probe: probe}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports dependency status. A missing ffmpeg only degrades phrasing,
// so it never fails readiness. ?recheck=1 re-runs the ffmpeg probe.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	if h.probe != nil {
		capable := false
		if r.URL.Query().Get("recheck") == "1" {
			capable = h.probe.Recheck(r.Context())
		} else {
			capable = h.probe.Capable(r.Context())
		}
		if capable {
			checks["ffmpeg"] = "ok"
		} else {
			checks["ffmpeg"] = "unavailable: " + h.probe.Bin() + " not found, natural phrasing disabled"
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

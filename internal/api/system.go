package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the component health probes in the status
// handler.
const healthCheckTimeout = 2 * time.Second

// systemStatus is the response body for GET /system/status.
type systemStatus struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	UptimeSec  int64             `json:"uptime_sec"`
	Scenes     sceneStatus       `json:"scenes"`
	Batches    int               `json:"batches"`
	WSClients  int               `json:"ws_clients"`
	Components map[string]string `json:"components"`
}

type sceneStatus struct {
	Loaded int    `json:"loaded"`
	Active string `json:"active,omitempty"`
}

// handleSystemStatus reports runtime state of the node and its optional
// backends.
//
// GET /api/v1/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := systemStatus{
		Status:     "ok",
		Version:    s.version,
		UptimeSec:  int64(time.Since(s.started).Seconds()),
		Batches:    s.batches.GetBatchCount(),
		Components: make(map[string]string),
	}

	status.Scenes.Loaded = s.stage.Count()
	if active, ok := s.stage.Active(); ok {
		status.Scenes.Active = active.Name
	}
	if s.hub != nil {
		status.WSClients = s.hub.ClientCount()
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if s.mqtt != nil {
		if err := s.mqtt.HealthCheck(ctx); err != nil {
			status.Components["mqtt"] = "unhealthy"
		} else {
			status.Components["mqtt"] = "ok"
		}
	} else {
		status.Components["mqtt"] = "disabled"
	}

	if s.metrics != nil {
		if err := s.metrics.HealthCheck(ctx); err != nil {
			status.Components["metrics"] = "unhealthy"
		} else {
			status.Components["metrics"] = "ok"
		}
	} else {
		status.Components["metrics"] = "disabled"
	}

	writeJSON(w, http.StatusOK, status)
}

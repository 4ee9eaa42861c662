package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nerrad567/sceneflow-core/internal/coordinator"
)

// loadScenesRequest is the request body for POST /scenes/load.
type loadScenesRequest struct {
	Scenes   []string `json:"scenes"`
	Activate string   `json:"activate,omitempty"`
	Recalc   *bool    `json:"recalc,omitempty"`
}

// unloadScenesRequest is the request body for POST /scenes/unload.
type unloadScenesRequest struct {
	Scenes []string `json:"scenes"`
	Recalc *bool    `json:"recalc,omitempty"`
}

// unloadAllExceptRequest is the request body for POST /scenes/unload-all-except.
type unloadAllExceptRequest struct {
	Keep   []string `json:"keep"`
	Recalc *bool    `json:"recalc,omitempty"`
}

// setActiveRequest is the request body for PUT /scenes/active.
type setActiveRequest struct {
	Name string `json:"name"`
}

// operationResponse is the response body for joined scene operations.
type operationResponse struct {
	Results []coordinator.Result `json:"results,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// recalcOrDefault resolves the optional recalc flag. Recalculation runs
// unless the caller explicitly disables it.
func recalcOrDefault(recalc *bool) bool {
	if recalc == nil {
		return true
	}
	return *recalc
}

// isAsync reports whether the caller requested fire-and-forget execution.
func isAsync(r *http.Request) bool {
	return r.URL.Query().Get("async") == "true"
}

// handleListScenes returns every scene currently on the stage.
//
// GET /api/v1/scenes
func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	scenes := s.stage.All()

	resp := map[string]any{
		"scenes": scenes,
		"count":  len(scenes),
	}
	if active, ok := s.stage.Active(); ok {
		resp["active"] = active.Name
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLoadScenes loads a set of scenes in parallel, optionally activating
// one of them afterwards.
//
// POST /api/v1/scenes/load
func (s *Server) handleLoadScenes(w http.ResponseWriter, r *http.Request) {
	var req loadScenesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Scenes) == 0 {
		writeBadRequest(w, "scenes must not be empty")
		return
	}

	recalc := recalcOrDefault(req.Recalc)

	if isAsync(r) {
		s.coord.GoLoadMany(context.WithoutCancel(r.Context()), req.Scenes, req.Activate, recalc, nil)
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
		return
	}

	results, err := s.coord.LoadMany(r.Context(), req.Scenes, req.Activate, recalc)
	if err != nil && len(results) == 0 {
		writeDomainError(w, err)
		return
	}

	resp := operationResponse{Results: results}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUnloadScenes unloads a set of scenes in parallel.
//
// POST /api/v1/scenes/unload
func (s *Server) handleUnloadScenes(w http.ResponseWriter, r *http.Request) {
	var req unloadScenesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Scenes) == 0 {
		writeBadRequest(w, "scenes must not be empty")
		return
	}

	recalc := recalcOrDefault(req.Recalc)

	if isAsync(r) {
		s.coord.GoUnloadMany(context.WithoutCancel(r.Context()), req.Scenes, recalc, nil)
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
		return
	}

	results, err := s.coord.UnloadMany(r.Context(), req.Scenes, recalc)
	if err != nil && len(results) == 0 {
		writeDomainError(w, err)
		return
	}

	resp := operationResponse{Results: results}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUnloadAllExcept unloads every loaded scene not in the keep list.
//
// POST /api/v1/scenes/unload-all-except
func (s *Server) handleUnloadAllExcept(w http.ResponseWriter, r *http.Request) {
	var req unloadAllExceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	recalc := recalcOrDefault(req.Recalc)

	if isAsync(r) {
		s.coord.GoUnloadAllExcept(context.WithoutCancel(r.Context()), req.Keep, recalc, nil)
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
		return
	}

	if err := s.coord.UnloadAllExcept(r.Context(), req.Keep, recalc); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "completed"})
}

// handleGetActiveScene returns the currently active scene.
//
// GET /api/v1/scenes/active
func (s *Server) handleGetActiveScene(w http.ResponseWriter, _ *http.Request) {
	active, ok := s.stage.Active()
	if !ok {
		writeNotFound(w, "no active scene")
		return
	}
	writeJSON(w, http.StatusOK, active)
}

// handleSetActiveScene activates a scene already present on the stage.
//
// PUT /api/v1/scenes/active
func (s *Server) handleSetActiveScene(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	if err := s.coord.SetActive(r.Context(), req.Name); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "activated", "name": req.Name})
}

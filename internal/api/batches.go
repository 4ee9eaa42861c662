package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sceneflow-core/internal/batch"
)

// batchRequest is the request body for creating or updating a batch.
type batchRequest struct {
	Name        *string  `json:"name,omitempty"`
	Slug        *string  `json:"slug,omitempty"`
	Description *string  `json:"description,omitempty"`
	Unload      []string `json:"unload,omitempty"`
	Load        []string `json:"load,omitempty"`
	Activate    *string  `json:"activate,omitempty"`
	Enabled     *bool    `json:"enabled,omitempty"`
	Recalc      *bool    `json:"recalc,omitempty"`
	SortOrder   *int     `json:"sort_order,omitempty"`
}

// apply overlays the request's set fields onto the definition.
func (req *batchRequest) apply(def *batch.Definition) {
	if req.Name != nil {
		def.Name = *req.Name
	}
	if req.Slug != nil {
		def.Slug = *req.Slug
	}
	if req.Description != nil {
		def.Description = req.Description
	}
	if req.Unload != nil {
		def.Unload = req.Unload
	}
	if req.Load != nil {
		def.Load = req.Load
	}
	if req.Activate != nil {
		def.Activate = *req.Activate
	}
	if req.Enabled != nil {
		def.Enabled = *req.Enabled
	}
	if req.Recalc != nil {
		def.Recalc = *req.Recalc
	}
	if req.SortOrder != nil {
		def.SortOrder = *req.SortOrder
	}
}

// runBatchRequest is the optional request body for POST /batches/{id}/run.
type runBatchRequest struct {
	Recalc *bool `json:"recalc,omitempty"`
}

// resolveBatch looks a batch up by ID, falling back to slug so routes
// accept either form.
func (s *Server) resolveBatch(r *http.Request) (*batch.Definition, error) {
	id := chi.URLParam(r, "id")
	def, err := s.batches.GetBatch(r.Context(), id)
	if errors.Is(err, batch.ErrNotFound) {
		return s.batches.GetBatchBySlug(r.Context(), id)
	}
	return def, err
}

// handleListBatches returns all batch definitions, or only enabled ones
// when ?enabled=true is given.
//
// GET /api/v1/batches
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	var (
		defs []batch.Definition
		err  error
	)
	if r.URL.Query().Get("enabled") == "true" {
		defs, err = s.batches.ListEnabledBatches(r.Context())
	} else {
		defs, err = s.batches.ListBatches(r.Context())
	}
	if err != nil {
		writeInternalError(w, "failed to list batches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"batches": defs,
		"count":   len(defs),
	})
}

// handleCreateBatch creates a new batch definition.
//
// POST /api/v1/batches
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	def := &batch.Definition{Enabled: true, Recalc: true}
	req.apply(def)

	if err := s.batches.CreateBatch(r.Context(), def); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, def)
}

// handleGetBatch returns a single batch definition.
//
// GET /api/v1/batches/{id}
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	def, err := s.resolveBatch(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// handleUpdateBatch applies a partial update to a batch definition.
//
// PATCH /api/v1/batches/{id}
func (s *Server) handleUpdateBatch(w http.ResponseWriter, r *http.Request) {
	def, err := s.resolveBatch(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	req.apply(def)

	if err := s.batches.UpdateBatch(r.Context(), def); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, def)
}

// handleDeleteBatch removes a batch definition.
//
// DELETE /api/v1/batches/{id}
func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	def, err := s.resolveBatch(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.batches.DeleteBatch(r.Context(), def.ID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRunBatch executes a batch through the coordinator.
//
// POST /api/v1/batches/{id}/run
//
// Disabled batches are rejected. The optional body overrides the
// definition's recalc flag; ?async=true runs the batch in the background.
func (s *Server) handleRunBatch(w http.ResponseWriter, r *http.Request) {
	def, err := s.resolveBatch(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !def.Enabled {
		writeDomainError(w, batch.ErrDisabled)
		return
	}

	recalc := def.Recalc
	if r.Body != nil && r.ContentLength > 0 {
		var req runBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}
		if req.Recalc != nil {
			recalc = *req.Recalc
		}
	}

	sceneBatch := def.Resolve()

	if isAsync(r) {
		s.coord.GoRunBatch(context.WithoutCancel(r.Context()), sceneBatch, recalc, nil)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status": "accepted",
			"batch":  def.ID,
		})
		return
	}

	start := time.Now()
	if err := s.coord.RunBatch(r.Context(), sceneBatch, recalc); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "completed",
		"batch":       def.ID,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

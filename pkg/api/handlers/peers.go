package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/scheduler"
	"github.com/fileswarm/fileswarm/pkg/userservice"
)

// PeerHandler serves the /v1/peers/{username}/... routes.
type PeerHandler struct {
	scheduler *scheduler.Scheduler
	assigner  userservice.Assigner
}

// NewPeerHandler constructs a PeerHandler. assigner may be nil if the
// configured UserService does not support operator reassignment, in
// which case AssignGroup answers 501.
func NewPeerHandler(s *scheduler.Scheduler, assigner userservice.Assigner) *PeerHandler {
	return &PeerHandler{scheduler: s, assigner: assigner}
}

type availabilityView struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// Availability serves GET /v1/peers/{username}/availability.
func (h *PeerHandler) Availability(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	ctx, span := telemetry.StartAPISpan(r.Context(), r.Method, r.URL.Path, telemetry.Username(username))
	defer span.End()

	available, err := h.scheduler.IsSlotAvailable(ctx, username)
	if err != nil {
		telemetry.RecordError(ctx, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(availabilityView{Username: username, Available: available}))
}

type positionView struct {
	Username string `json:"username"`
	Filename string `json:"filename,omitempty"`
	Position int    `json:"position"`
}

// Position serves GET /v1/peers/{username}/position and
// GET /v1/peers/{username}/position/{filename}.
func (h *PeerHandler) Position(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	filename := chi.URLParam(r, "filename")
	ctx, span := telemetry.StartAPISpan(r.Context(), r.Method, r.URL.Path, telemetry.Username(username))
	defer span.End()

	var (
		position int
		err      error
	)
	if filename == "" {
		position, err = h.scheduler.EstimatePositionForUser(ctx, username)
	} else {
		position, err = h.scheduler.EstimatePositionForUpload(ctx, username, filename)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		if errors.Is(err, scheduler.ErrNotEnqueued) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	telemetry.SetAttributes(ctx, telemetry.Position(position))
	writeJSON(w, http.StatusOK, okResponse(positionView{Username: username, Filename: filename, Position: position}))
}

type assignGroupRequest struct {
	Group string `json:"group"`
}

// AssignGroup serves POST /v1/peers/{username}/group, an operator
// override of a peer's group assignment.
func (h *PeerHandler) AssignGroup(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	ctx, span := telemetry.StartAPISpan(r.Context(), r.Method, r.URL.Path, telemetry.Username(username))
	defer span.End()

	if h.assigner == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse("configured user service does not support reassignment"))
		return
	}

	var req assignGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Group == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("request body must be {\"group\": \"<name>\"}"))
		return
	}

	if err := h.assigner.Assign(ctx, username, req.Group); err != nil {
		telemetry.RecordError(ctx, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	telemetry.SetAttributes(ctx, telemetry.Group(req.Group))
	logger.InfoCtx(ctx, "peer group reassigned", "username", username, "group", req.Group)
	writeJSON(w, http.StatusOK, okResponse(map[string]string{"username": username, "group": req.Group}))
}

package handlers

import (
	"net/http"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/scheduler"
)

// groupStatusView is the wire shape of one group's accounting, sent
// in place of scheduler.GroupStatus so the strategy enum serializes
// as a readable string instead of an int.
type groupStatusView struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Slots     int    `json:"slots"`
	Strategy  string `json:"strategy"`
	UsedSlots int    `json:"used_slots"`
	Ready     int    `json:"ready"`
}

type statusView struct {
	GlobalSlots int               `json:"global_slots"`
	UsedSlots   int               `json:"used_slots"`
	Groups      []groupStatusView `json:"groups"`
}

// StatusHandler serves GET /v1/status.
type StatusHandler struct {
	scheduler *scheduler.Scheduler
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(s *scheduler.Scheduler) *StatusHandler {
	return &StatusHandler{scheduler: s}
}

// Get reports global and per-group slot accounting.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.StartSpan(r.Context(), telemetry.SpanAPIStatus)
	defer span.End()

	snap := h.scheduler.Status(ctx)
	view := statusView{
		GlobalSlots: snap.GlobalSlots,
		UsedSlots:   snap.UsedSlots,
		Groups:      make([]groupStatusView, 0, len(snap.Groups)),
	}
	for _, g := range snap.Groups {
		view.Groups = append(view.Groups, groupStatusView{
			Name:      g.Name,
			Priority:  g.Priority,
			Slots:     g.Slots,
			Strategy:  g.Strategy.String(),
			UsedSlots: g.UsedSlots,
			Ready:     g.Ready,
		})
	}

	telemetry.SetAttributes(ctx,
		telemetry.GlobalSlots(snap.GlobalSlots),
		telemetry.UsedSlots(snap.UsedSlots))
	logger.DebugCtx(ctx, "status served", "global_slots", snap.GlobalSlots, "used_slots", snap.UsedSlots)
	writeJSON(w, http.StatusOK, okResponse(view))
}

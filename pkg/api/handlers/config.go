package handlers

import (
	"net/http"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/configsource"
	"github.com/fileswarm/fileswarm/pkg/scheduler"
)

// ConfigHandler serves POST /v1/config/reload.
type ConfigHandler struct {
	source    configsource.Source
	scheduler *scheduler.Scheduler
}

// NewConfigHandler constructs a ConfigHandler.
func NewConfigHandler(source configsource.Source, s *scheduler.Scheduler) *ConfigHandler {
	return &ConfigHandler{source: source, scheduler: s}
}

// Reload forces an immediate ConfigSource.Snapshot and Configure
// call, for operators who run with the source's background poller
// disabled.
func (h *ConfigHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.StartAPISpan(r.Context(), r.Method, r.URL.Path)
	defer span.End()

	opts, err := h.source.Snapshot(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
		writeJSON(w, http.StatusBadGateway, errorResponse("snapshot fetch failed: "+err.Error()))
		return
	}

	if err := h.scheduler.Configure(ctx, opts); err != nil {
		telemetry.RecordError(ctx, err)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse("configure rejected snapshot: "+err.Error()))
		return
	}

	logger.InfoCtx(ctx, "configuration reloaded via API", "global_slots", opts.GlobalSlots)
	writeJSON(w, http.StatusOK, okResponse(map[string]int{"global_slots": opts.GlobalSlots}))
}

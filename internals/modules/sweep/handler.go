package sweep

import (
	"errors"
	"net/http"
	"time"

	"taskalive/pkg/apperror"
	"taskalive/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Trigger runs one sweep on demand. It is meant to be hit by an external
// scheduler (cron) and is guarded by the cron bearer-secret middleware.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	sum, err := h.engine.Sweep(ctx, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			utils.WriteError(w, http.StatusConflict, reqID, apperror.Conflict, "sweep already in progress")
			return
		}
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "sweep complete", sum)
}

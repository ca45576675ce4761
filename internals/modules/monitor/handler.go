package monitor

import (
	"encoding/json"
	"net/http"
	"strconv"

	middle "taskalive/internals/middleware"
	"taskalive/pkg/apperror"
	"taskalive/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service, validator *validator.Validate) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
	}
}

// requestScope pulls the pieces every handler needs: request id, account
// id from the auth claims, and (when present) the monitorID URL param.
func requestScope(r *http.Request, wantMonitorID bool) (reqID string, accountID, monitorID uuid.UUID, ok bool) {
	ctx := r.Context()
	reqID = middleware.GetReqID(ctx)

	claims, found := middle.AccountFromContext(ctx)
	if !found {
		return reqID, uuid.Nil, uuid.Nil, false
	}
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return reqID, uuid.Nil, uuid.Nil, false
	}

	if wantMonitorID {
		monitorID, err = uuid.Parse(chi.URLParam(r, "monitorID"))
		if err != nil {
			return reqID, uuid.Nil, uuid.Nil, false
		}
	}
	return reqID, accountID, monitorID, true
}

func (h *Handler) CreateMonitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, accountID, _, ok := requestScope(r, false)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	// decode request body
	var req CreateMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "")
		return
	}

	// validate request body
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "")
		return
	}

	res, err := h.service.CreateMonitor(ctx, CreateMonitorCmd{
		AccountID:         accountID,
		Name:              req.Name,
		IntervalSec:       req.IntervalSec,
		GraceSec:          req.GraceSec,
		Tags:              req.Tags,
		AlertEmails:       req.AlertEmails,
		SlackWebhookURL:   req.SlackWebhookURL,
		DiscordWebhookURL: req.DiscordWebhookURL,
		TeamsWebhookURL:   req.TeamsWebhookURL,
		DownMessage:       req.DownMessage,
		RecoveryMessage:   req.RecoveryMessage,
	})
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, reqID, "monitor created", map[string]string{
		"id":         res.MonitorID.String(),
		"ping_token": res.PingToken,
	})
}

func (h *Handler) GetMonitor(w http.ResponseWriter, r *http.Request) {
	reqID, accountID, monitorID, ok := requestScope(r, true)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	m, err := h.service.GetMonitor(r.Context(), accountID, monitorID)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "", toMonitorResponse(&m))
}

// /monitors?offset=0&limit=50
func (h *Handler) GetAllMonitors(w http.ResponseWriter, r *http.Request) {
	reqID, accountID, _, ok := requestScope(r, false)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	limit, offset := pagination(r)

	monitors, err := h.service.GetAllMonitors(r.Context(), accountID, limit, offset)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	items := make([]GetMonitorResponse, 0, len(monitors))
	for i := range monitors {
		items = append(items, toMonitorResponse(&monitors[i]))
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "", GetAllMonitorsResponse{
		Limit:    limit,
		Offset:   offset,
		Monitors: items,
	})
}

func (h *Handler) UpdateMonitor(w http.ResponseWriter, r *http.Request) {
	reqID, accountID, monitorID, ok := requestScope(r, true)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	var req UpdateMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "")
		return
	}

	m, err := h.service.UpdateMonitor(r.Context(), accountID, monitorID, UpdateMonitorCmd{
		Name:              req.Name,
		IntervalSec:       req.IntervalSec,
		GraceSec:          req.GraceSec,
		Tags:              req.Tags,
		AlertEmails:       req.AlertEmails,
		SlackWebhookURL:   req.SlackWebhookURL,
		DiscordWebhookURL: req.DiscordWebhookURL,
		TeamsWebhookURL:   req.TeamsWebhookURL,
		DownMessage:       req.DownMessage,
		RecoveryMessage:   req.RecoveryMessage,
	})
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "monitor updated", toMonitorResponse(&m))
}

func (h *Handler) PauseMonitor(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true, "monitor paused")
}

func (h *Handler) ResumeMonitor(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, false, "monitor resumed")
}

func (h *Handler) setPaused(w http.ResponseWriter, r *http.Request, paused bool, msg string) {
	reqID, accountID, monitorID, ok := requestScope(r, true)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	if err := h.service.SetPaused(r.Context(), accountID, monitorID, paused); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON[any](w, http.StatusOK, reqID, msg, nil)
}

func (h *Handler) DeleteMonitor(w http.ResponseWriter, r *http.Request) {
	reqID, accountID, monitorID, ok := requestScope(r, true)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	if err := h.service.DeleteMonitor(r.Context(), accountID, monitorID); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON[any](w, http.StatusOK, reqID, "monitor deleted", nil)
}

func (h *Handler) ListPings(w http.ResponseWriter, r *http.Request) {
	reqID, accountID, monitorID, ok := requestScope(r, true)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	limit, offset := pagination(r)
	pings, err := h.service.ListPings(r.Context(), accountID, monitorID, limit, offset)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", pings)
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	reqID, accountID, monitorID, ok := requestScope(r, true)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	limit, offset := pagination(r)
	alerts, err := h.service.ListAlerts(r.Context(), accountID, monitorID, limit, offset)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", alerts)
}

func pagination(r *http.Request) (limit, offset int32) {
	limit = 50
	offset = 0
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil {
		limit = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 32); err == nil {
		offset = int32(v)
	}
	return limit, offset
}

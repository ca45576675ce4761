package monitor

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateMonitor)
	r.Get("/", h.GetAllMonitors)
	r.Get("/{monitorID}", h.GetMonitor)
	r.Patch("/{monitorID}", h.UpdateMonitor)
	r.Delete("/{monitorID}", h.DeleteMonitor)
	r.Post("/{monitorID}/pause", h.PauseMonitor)
	r.Post("/{monitorID}/resume", h.ResumeMonitor)
	r.Get("/{monitorID}/pings", h.ListPings)
	r.Get("/{monitorID}/alerts", h.ListAlerts)

	return r
}

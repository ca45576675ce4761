package app

import (
	"time"

	middle "taskalive/internals/middleware"
	"taskalive/internals/modules/monitor"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(c *Container) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middle.Logger(c.Logger))
	r.Use(middleware.Timeout(15 * time.Second))

	// Heartbeat ingest is unauthenticated: the token in the path is the
	// only credential. Both verbs are accepted so curl one-liners and
	// cron jobs work without a body.
	r.Get("/ping/{token}", c.pingHandler.Ingest)
	r.Post("/ping/{token}", c.pingHandler.Ingest)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.With(c.authMW.Handle).
			Mount("/monitors", monitor.Routes(c.monitorHandler))

		v1.With(middle.CronAuth(c.cronSecret)).
			Route("/cron", func(cron chi.Router) {
				cron.Get("/sweep", c.sweepHandler.Trigger)
				cron.Post("/sweep", c.sweepHandler.Trigger)
			})
	})

	return r
}

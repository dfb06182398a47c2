// Package api serves the dispenser over HTTP. Two thin adapters share the dispenser.Service:
// the query variant (GET ?slot=N, plain text) and the JSON variant (POST {"day","dose"}).
package api

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"github.com/calvinmclean/pilldispenser"
	"github.com/calvinmclean/pilldispenser/dispenser"
	"github.com/calvinmclean/pilldispenser/metrics"
)

//go:embed web
var webFS embed.FS

type operation func(context.Context, pilldispenser.Slot) (dispenser.Result, error)

// API holds the handlers
type API struct {
	svc    *dispenser.Service
	logger zerolog.Logger
}

func New(svc *dispenser.Service, logger zerolog.Logger) *API {
	return &API{
		svc:    svc,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the chi router with all routes and middleware
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	static, _ := fs.Sub(webFS, "web")
	r.Get("/", serveFile(static, "index.html"))
	r.Get("/script.js", serveFile(static, "script.js"))

	ops := map[string]operation{
		"/add_dose":    a.svc.Fill,
		"/remove_dose": a.svc.Remove,
		"/dispense":    a.svc.Dispense,
	}
	for path, op := range ops {
		r.Get(path, a.queryHandler(op))
		r.Post(path, a.jsonHandler(op))
	}

	r.Get("/get_filled_doses", a.getFilledDoses)
	r.Get("/slots", a.getSlots)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}

func serveFile(static fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, name)
	}
}

// statusFor is shared by both adapters so they never disagree about a result
func statusFor(err error) int {
	switch dispenser.Classify(err) {
	case dispenser.KindNone, dispenser.KindConflict:
		return http.StatusOK
	case dispenser.KindValidation:
		return http.StatusBadRequest
	case dispenser.KindNotFound:
		return http.StatusNotFound
	case dispenser.KindBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}

// isBusy is used by the list handlers which do not go through Classify
func isBusy(err error) bool {
	return errors.Is(err, dispenser.ErrBusy)
}

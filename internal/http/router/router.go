// Package router arma el árbol de rutas (go-chi) de la API de early access.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	eactrl "github.com/dropDatabas3/earlyaccess/internal/http/controllers/earlyaccess"
	healthctrl "github.com/dropDatabas3/earlyaccess/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/earlyaccess/internal/http/errors"
	mw "github.com/dropDatabas3/earlyaccess/internal/http/middlewares"
	"github.com/dropDatabas3/earlyaccess/internal/rate"
)

// Rutas.
const (
	FormPath     = "/v2/early-access/form"
	RegisterPath = "/v2/early-access/register"
	ConfirmPath  = "/v2/early-access/confirm"
)

// Deps del router.
type Deps struct {
	EarlyAccess *eactrl.Controller
	Legal       *eactrl.LegalController
	Health      *healthctrl.Controller
	Metrics     http.Handler // nil ⇒ sin /metrics

	Logger        *zap.Logger
	CORSOrigins   []string
	RegisterLimit rate.Limiter // nil ⇒ sin límite
	ConfirmLimit  rate.Limiter
}

// New devuelve el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// infra: sin logging (muy frecuentes)
	r.Group(func(r chi.Router) {
		r.Use(mw.WithRecover())
		if d.Health != nil {
			r.Get("/healthz", d.Health.Healthz)
			r.Get("/readyz", d.Health.Readyz)
		}
		if d.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", d.Metrics)
		}
	})

	if d.Legal != nil {
		r.Group(func(r chi.Router) {
			r.Use(mw.WithRecover(), mw.WithRequestID())
			r.Get("/terms", d.Legal.Terms)
			r.Get("/privacy", d.Legal.Privacy)
		})
	}

	if d.EarlyAccess != nil {
		r.Group(func(r chi.Router) {
			r.Use(
				mw.WithRecover(),
				mw.WithRequestID(),
				mw.WithLogging(d.Logger),
				mw.WithMetrics(),
				mw.WithSecurityHeaders(),
				mw.WithCORS(d.CORSOrigins),
			)
			r.Get(FormPath, d.EarlyAccess.Form)
			r.With(
				mw.WithNoStore(),
				mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.RegisterLimit}),
			).Post(RegisterPath, d.EarlyAccess.Register)
			r.With(
				mw.WithNoStore(),
				mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.ConfirmLimit}),
			).Get(ConfirmPath, d.EarlyAccess.Confirm)
			// preflight CORS (WithCORS responde 204)
			r.Options(RegisterPath, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
		})
	}

	return r
}

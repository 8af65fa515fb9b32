// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/earlyaccess/internal/http/dto/earlyaccess"
	"github.com/dropDatabas3/earlyaccess/internal/http/helpers"
	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
)

// Check verifica un componente (store, cache...).
type Check func(ctx context.Context) error

// Controller maneja /healthz (liveness) y /readyz (readiness).
type Controller struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewController crea el controller con los checks de readiness.
func NewController(checks map[string]Check) *Controller {
	return &Controller{checks: checks, timeout: 2 * time.Second}
}

// Healthz siempre responde ok mientras el proceso esté vivo.
func (c *Controller) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Readyz ejecuta los checks; cualquiera que falle ⇒ 503.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ready", Components: make(map[string]string, len(c.checks))}
	status := http.StatusOK
	for name, check := range c.checks {
		if err := check(ctx); err != nil {
			resp.Components[name] = "down"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			continue
		}
		resp.Components[name] = "up"
	}
	helpers.WriteJSON(w, status, resp)
}

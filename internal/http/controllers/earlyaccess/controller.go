// Package earlyaccess contiene los controllers HTTP del formulario de early access.
package earlyaccess

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/earlyaccess/internal/http/dto/earlyaccess"
	httperrors "github.com/dropDatabas3/earlyaccess/internal/http/errors"
	"github.com/dropDatabas3/earlyaccess/internal/http/helpers"
	mw "github.com/dropDatabas3/earlyaccess/internal/http/middlewares"
	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
	svc "github.com/dropDatabas3/earlyaccess/internal/registration/service"
)

// Controller maneja las rutas /v2/early-access/*.
type Controller struct {
	service svc.Service
}

// NewController crea el controller.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Form maneja GET /v2/early-access/form
func (c *Controller) Form(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.FormSchema())
}

// Register maneja POST /v2/early-access/register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("EarlyAccess.Register"))

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	reg, err := c.service.Register(ctx, svc.RegisterInput{
		Fields:    req.ToFields(),
		ClientIP:  mw.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.RegisterResponse{ID: reg.ID, Status: string(reg.Status)})
}

// Confirm maneja GET /v2/early-access/confirm?token=
func (c *Controller) Confirm(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrMissingToken)
		return
	}

	reg, err := c.service.Confirm(r.Context(), token)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}

	out := dto.ConfirmResponse{ID: reg.ID, Status: string(reg.Status)}
	if reg.ConfirmedAt != nil {
		out.ConfirmedAt = *reg.ConfirmedAt
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// mapError traduce errores del servicio a AppError.
func mapError(err error) error {
	var fieldErrs registration.Errors
	switch {
	case errors.As(err, &fieldErrs):
		out := make(map[string]string, len(fieldErrs))
		for f, msg := range fieldErrs {
			out[string(f)] = msg
		}
		return httperrors.ErrValidation.WithFields(out)
	case errors.Is(err, svc.ErrEmailTaken):
		return httperrors.ErrEmailTaken
	case errors.Is(err, svc.ErrTokenExpired):
		return httperrors.ErrTokenExpired
	case errors.Is(err, svc.ErrTokenReused):
		return httperrors.ErrTokenReused
	case errors.Is(err, svc.ErrInvalidToken), errors.Is(err, svc.ErrRegistrationMissing):
		return httperrors.ErrTokenInvalid
	case errors.Is(err, svc.ErrConfirmUnavailable):
		return httperrors.ErrServiceUnavailable.WithDetail("email confirmation is not enabled")
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

// Package service implementa el backend de early access: alta de inscripciones,
// confirmación del email y el schema del formulario para los presenters.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/earlyaccess/internal/cache"
	"github.com/dropDatabas3/earlyaccess/internal/events"
	"github.com/dropDatabas3/earlyaccess/internal/metrics"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
	tokens "github.com/dropDatabas3/earlyaccess/internal/security/token"
)

// Errores (sentinel). registration.Errors se devuelve tal cual para 422.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidToken        = errors.New("invalid confirmation token")
	ErrTokenExpired        = errors.New("confirmation token expired")
	ErrTokenReused         = errors.New("confirmation token already used")
	ErrConfirmUnavailable  = errors.New("email confirmation not configured")
	ErrRegistrationMissing = errors.New("registration not found")
)

// ConfirmationMailer envía el link de confirmación.
type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, to, name, token string, ttl time.Duration) error
}

// Validator es la regla de validación de los campos (la misma que usa el formulario).
type Validator interface {
	Validate(f registration.Fields) registration.Errors
}

// Legal son las URLs de los documentos linkeados desde el checkbox de términos.
type Legal struct {
	TermsURL   string
	PrivacyURL string
}

// Deps del servicio. Repo es obligatorio; el resto es opcional y se degrada:
// sin Confirmer no hay mail ni confirmación, sin Publisher no hay eventos.
type Deps struct {
	Repo      store.Repository
	Validator Validator
	Confirmer *tokens.Confirmer
	Mailer    ConfirmationMailer
	Publisher events.Publisher
	Replay    cache.Client
	Metrics   *metrics.Registration
	Legal     Legal
	Now       func() time.Time
	NewID     func() string
}

// RegisterInput es lo que llega del handler.
type RegisterInput struct {
	Fields    registration.Fields
	ClientIP  string
	UserAgent string
}

// Service es el contrato consumido por la capa HTTP.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*store.Registration, error)
	Confirm(ctx context.Context, token string) (*store.Registration, error)
	FormSchema() Schema
}

type service struct {
	deps   Deps
	flight singleflight.Group
	tracer trace.Tracer
}

// New crea el servicio.
func New(d Deps) Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Validator == nil {
		d.Validator = registration.Validator{Now: d.Now}
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.NewID == nil {
		d.NewID = newID
	}
	return &service{deps: d, tracer: otel.Tracer("earlyaccess/service")}
}

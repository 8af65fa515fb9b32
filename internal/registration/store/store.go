// Package store define el contrato de persistencia de inscripciones de early
// access. Adapters: memory (dev/tests) y pg (PostgreSQL vía pgx).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/earlyaccess/internal/registration"
)

var (
	// ErrNotFound: no existe la inscripción pedida.
	ErrNotFound = errors.New("store: registration not found")
	// ErrConflict: ya hay una inscripción con ese email.
	ErrConflict = errors.New("store: email already registered")
)

// Status de una inscripción.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// ClientInfo describe el navegador desde el que se envió el formulario.
type ClientInfo struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OS             string `json:"os,omitempty"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}

// Registration es una inscripción persistida.
type Registration struct {
	ID          string
	Fields      registration.Fields
	Email       string // normalizado (trim + lower), clave de unicidad
	Status      Status
	ClientIP    string
	Client      ClientInfo
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// Repository persiste inscripciones.
type Repository interface {
	// Create inserta r. Devuelve ErrConflict si r.Email ya existe.
	Create(ctx context.Context, r *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEmail(ctx context.Context, email string) (*Registration, error)
	// MarkConfirmed pasa la inscripción a confirmed (idempotente) y la devuelve.
	MarkConfirmed(ctx context.Context, id string, at time.Time) (*Registration, error)
	Ping(ctx context.Context) error
	Close() error
}

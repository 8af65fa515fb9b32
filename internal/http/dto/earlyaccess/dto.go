// Package earlyaccess contiene los DTOs HTTP de early access.
package earlyaccess

import (
	"time"

	"github.com/dropDatabas3/earlyaccess/internal/registration"
)

// RegisterRequest es el body de POST /v2/early-access/register.
type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	DateOfBirth   string `json:"date_of_birth"`
	Location      string `json:"location"`
	Gender        string `json:"gender"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// ToFields convierte el request al modelo de dominio. Gender viaja tal cual:
// sólo los valores exactos del select son válidos ("MALE" no lo es).
func (r RegisterRequest) ToFields() registration.Fields {
	return registration.Fields{
		Name:          r.Name,
		Email:         r.Email,
		DateOfBirth:   r.DateOfBirth,
		Location:      r.Location,
		Gender:        registration.Gender(r.Gender),
		TermsAccepted: r.TermsAccepted,
	}
}

// RegisterResponse es la respuesta 201.
type RegisterResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ConfirmResponse es la respuesta de GET /v2/early-access/confirm.
type ConfirmResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// HealthResponse de /healthz y /readyz.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Package events publica los eventos de dominio de early access
// (registration.created, registration.confirmed).
package events

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Tipos de evento.
const (
	TypeRegistrationCreated   = "registration.created"
	TypeRegistrationConfirmed = "registration.confirmed"
)

// DefaultTopic de Kafka.
const DefaultTopic = "earlyaccess.registrations"

// Event es el payload publicado. El email nunca viaja en claro.
type Event struct {
	Type           string    `json:"type"`
	RegistrationID string    `json:"registration_id"`
	EmailHash      string    `json:"email_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// Publisher publica eventos.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// HashEmail devuelve blake2b-256(trim+lower(email)) en hex.
func HashEmail(email string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// NopPublisher descarta todo.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

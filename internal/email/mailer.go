package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ConfirmPath es la ruta del endpoint de confirmación.
const ConfirmPath = "/v2/early-access/confirm"

// ConfirmSubject del mail.
const ConfirmSubject = "Confirm your early access registration"

// Mailer arma y envía el mail de confirmación.
type Mailer struct {
	sender  Sender
	tpl     *Templates
	baseURL string
	product string
}

// NewMailer crea un Mailer. baseURL es el origen público del backend.
func NewMailer(sender Sender, tpl *Templates, baseURL, product string) *Mailer {
	if product == "" {
		product = "Ayen"
	}
	return &Mailer{
		sender:  sender,
		tpl:     tpl,
		baseURL: strings.TrimRight(baseURL, "/"),
		product: product,
	}
}

// ConfirmLink arma el link con el token en query.
func (m *Mailer) ConfirmLink(token string) string {
	return m.baseURL + ConfirmPath + "?token=" + url.QueryEscape(token)
}

// SendConfirmation envía el mail con el link de confirmación.
func (m *Mailer) SendConfirmation(ctx context.Context, to, name, token string, ttl time.Duration) error {
	_, span := otel.Tracer("earlyaccess/email").Start(ctx, "email.SendConfirmation")
	defer span.End()
	span.SetAttributes(attribute.String("email.subject", ConfirmSubject))

	htmlBody, textBody, err := m.tpl.RenderConfirm(ConfirmVars{
		Product: m.product,
		Name:    name,
		Email:   to,
		Link:    m.ConfirmLink(token),
		TTL:     humanTTL(ttl),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render")
		return err
	}
	if err := m.sender.Send(to, ConfirmSubject, htmlBody, textBody); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("email: send confirmation: %w", err)
	}
	return nil
}

func humanTTL(d time.Duration) string {
	switch {
	case d <= 0:
		return "a few days"
	case d%(24*time.Hour) == 0:
		n := int(d / (24 * time.Hour))
		if n == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", n)
	case d%time.Hour == 0:
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", n)
	default:
		return d.Round(time.Minute).String()
	}
}

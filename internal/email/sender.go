package email

import "errors"

// Sender es la interfaz para enviar emails.
// El destinatario recibe html y texto como multipart/alternative.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// ErrNoRecipient: Send sin destinatario.
var ErrNoRecipient = errors.New("email: empty recipient")

// TLS modes de SMTPSender.
const (
	TLSAuto     = "auto"
	TLSStartTLS = "starttls"
	TLSSSL      = "ssl"
	TLSNone     = "none"
)

// ValidTLSMode reporta si m es un modo soportado ("" cuenta como auto).
func ValidTLSMode(m string) bool {
	switch m {
	case "", TLSAuto, TLSStartTLS, TLSSSL, TLSNone:
		return true
	}
	return false
}

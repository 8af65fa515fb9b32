package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
)

// SMTPConfig contiene la configuración para conectarse a un servidor SMTP.
type SMTPConfig struct {
	Host               string
	Port               int // default 587
	Username           string
	Password           string
	FromEmail          string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool   // solo dev
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string
	InsecureSkipVerify bool

	// dial se reemplaza en tests.
	dial func(d *mail.Dialer, m ...*mail.Message) error
}

// NewSMTPSender crea un SMTPSender desde SMTPConfig.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	mode := cfg.TLSMode
	if mode == "" {
		mode = TLSAuto
	}
	return &SMTPSender{
		Host:               cfg.Host,
		Port:               port,
		From:               cfg.FromEmail,
		User:               cfg.Username,
		Pass:               cfg.Password,
		TLSMode:            mode,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		dial:               func(d *mail.Dialer, m ...*mail.Message) error { return d.DialAndSend(m...) },
	}
}

// Send envía un email con contenido HTML y texto plano.
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	if to == "" {
		return ErrNoRecipient
	}
	log := logger.L().With(
		logger.Component("smtp_sender"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
	)

	m := s.message(to, subject, htmlBody, textBody)
	d := s.dialer()

	if err := s.dial(d, m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("email sent", logger.String("tls_mode", s.TLSMode))
	return nil
}

func (s *SMTPSender) message(to, subject, htmlBody, textBody string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	// multipart/alternative (txt + html)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}
	return m
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	switch s.TLSMode {
	case TLSSSL:
		d.SSL = true
	case TLSStartTLS:
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case TLSNone:
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// auto: go-mail negocia STARTTLS si el server lo ofrece
	}
	return d
}

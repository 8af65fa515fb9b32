// Package client implementa form.Registrar contra el backend de early access
// (POST /v2/early-access/register). Propaga el resultado real del backend:
// éxito, rechazo por validación, email duplicado o error de transporte.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RegisterPath es la ruta del endpoint de registro.
const RegisterPath = "/v2/early-access/register"

// ErrAlreadyRegistered: el backend ya tiene una inscripción con ese email.
var ErrAlreadyRegistered = errors.New("client: email already registered")

// RejectedError: el backend rechazó los campos (422).
type RejectedError struct {
	Fields registration.Errors
}

func (e *RejectedError) Error() string {
	return "client: registration rejected: " + e.Fields.Error()
}

// StatusError: respuesta no esperada del backend.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("client: backend returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("client: backend returned %d", e.StatusCode)
}

// Config del cliente.
type Config struct {
	BaseURL string
	// Timeout 0 ⇒ sin timeout propio; el ctx del caller manda.
	Timeout time.Duration
	// HTTPClient opcional (tests).
	HTTPClient *http.Client
	UserAgent  string
}

// Client es el Registrar HTTP.
type Client struct {
	base string
	http *http.Client
	ua   string
}

// New crea un Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("client: base URL required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "earlyaccess-cli"
	}
	return &Client{base: base, http: hc, ua: ua}, nil
}

type errorBody struct {
	Code    string                        `json:"code"`
	Message string                        `json:"message"`
	Fields  map[registration.Field]string `json:"fields"`
}

// Register envía los campos una sola vez; no reintenta.
func (c *Client) Register(ctx context.Context, f registration.Fields) (err error) {
	ctx, span := otel.Tracer("earlyaccess/client").Start(ctx, "client.Register")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log := logger.From(ctx).With(logger.Layer("client"), logger.Op("Register"))

	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("client: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+RegisterPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: post: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode/100 == 2 {
		log.Debug("registration accepted", logger.Status(resp.StatusCode))
		return nil
	}

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)

	switch resp.StatusCode {
	case http.StatusUnprocessableEntity:
		if len(eb.Fields) > 0 {
			return &RejectedError{Fields: registration.Errors(eb.Fields)}
		}
	case http.StatusConflict:
		return ErrAlreadyRegistered
	}
	return &StatusError{StatusCode: resp.StatusCode, Code: eb.Code, Message: eb.Message}
}

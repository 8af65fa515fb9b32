// Package tokens emite y valida los tokens firmados de los links de confirmación.
package tokens

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TypeConfirm va en el claim "typ"; evita aceptar JWTs de otro propósito firmados con el mismo secreto.
const TypeConfirm = "ea_confirm"

// DefaultTTL del link de confirmación.
const DefaultTTL = 72 * time.Hour

const leeway = 30 * time.Second

var (
	ErrInvalid = errors.New("tokens: invalid confirmation token")
	ErrExpired = errors.New("tokens: confirmation token expired")
	ErrNoKey   = errors.New("tokens: empty signing secret")
)

// ConfirmClaims son las claims del token de confirmación.
type ConfirmClaims struct {
	Type  string `json:"typ"`
	Email string `json:"email"`
	jwtv5.RegisteredClaims
}

// RegistrationID es el subject.
func (c *ConfirmClaims) RegistrationID() string { return c.Subject }

// Confirmer firma/valida tokens HS256.
type Confirmer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewConfirmer crea un Confirmer. ttl <= 0 usa DefaultTTL.
func NewConfirmer(secret, issuer string, ttl time.Duration) (*Confirmer, error) {
	if secret == "" {
		return nil, ErrNoKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Confirmer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// WithClock reemplaza el reloj (tests).
func (c *Confirmer) WithClock(now func() time.Time) *Confirmer {
	cp := *c
	cp.now = now
	return &cp
}

// TTL configurado.
func (c *Confirmer) TTL() time.Duration { return c.ttl }

// Issue firma un token para la inscripción id/email. Devuelve el token y su jti.
func (c *Confirmer) Issue(id, email string) (string, string, error) {
	now := c.now()
	jti := uuid.NewString()
	claims := ConfirmClaims{
		Type:  TypeConfirm,
		Email: email,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   id,
			ID:        jti,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(c.ttl)),
		},
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", "", fmt.Errorf("tokens: sign: %w", err)
	}
	return signed, jti, nil
}

// Verify valida firma, typ, issuer y exp.
func (c *Confirmer) Verify(raw string) (*ConfirmClaims, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(leeway),
		jwtv5.WithTimeFunc(c.now),
		jwtv5.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(c.issuer))
	}

	var claims ConfirmClaims
	_, err := jwtv5.ParseWithClaims(raw, &claims, func(*jwtv5.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.Type != TypeConfirm || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalid
	}
	return &claims, nil
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/earlyaccess/internal/cache"
	eactrl "github.com/dropDatabas3/earlyaccess/internal/http/controllers/earlyaccess"
	healthctrl "github.com/dropDatabas3/earlyaccess/internal/http/controllers/health"
	"github.com/dropDatabas3/earlyaccess/internal/rate"
	"github.com/dropDatabas3/earlyaccess/internal/registration/service"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store/memory"
	tokens "github.com/dropDatabas3/earlyaccess/internal/security/token"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type captureMailer struct {
	mu     sync.Mutex
	tokens []string
}

func (m *captureMailer) SendConfirmation(_ context.Context, _, _ string, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	return nil
}

type testServer struct {
	handler http.Handler
	mailer  *captureMailer
}

func newTestServer(t *testing.T, limit rate.Limiter, checks map[string]healthctrl.Check) *testServer {
	t.Helper()
	conf, err := tokens.NewConfirmer("secret", "earlyaccess", time.Hour)
	require.NoError(t, err)
	conf = conf.WithClock(func() time.Time { return fixedNow })

	mailer := &captureMailer{}
	svc := service.New(service.Deps{
		Repo:      memory.New(),
		Confirmer: conf,
		Mailer:    mailer,
		Replay:    cache.NewMemory("", 0),
		Now:       func() time.Time { return fixedNow },
		Legal:     service.Legal{TermsURL: "https://ayen.example/terms", PrivacyURL: "https://ayen.example/privacy"},
	})

	h := New(Deps{
		EarlyAccess:   eactrl.NewController(svc),
		Legal:         eactrl.NewLegalController("https://ayen.example/terms", "https://ayen.example/privacy"),
		Health:        healthctrl.NewController(checks),
		Logger:        zap.NewNop(),
		RegisterLimit: limit,
	})
	return &testServer{handler: h, mailer: mailer}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"name":"Ada","email":"ada@example.com","date_of_birth":"1990-05-01","location":"London","gender":"female","terms_accepted":true}`

func TestRegister_Created(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.do(http.MethodPost, RegisterPath, validBody)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out["id"])
	assert.Equal(t, "pending", out["status"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRegister_ValidationErrors(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.do(http.MethodPost, RegisterPath, `{"name":"","email":"nope","date_of_birth":"2015-01-01","location":"","gender":"other","terms_accepted":false}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var out struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "VALIDATION_FAILED", out.Code)
	assert.Equal(t, "Name must be between 1 and 50 characters", out.Fields["name"])
	assert.Equal(t, "Invalid email format", out.Fields["email"])
	assert.Equal(t, "You must be over 18", out.Fields["date_of_birth"])
	assert.Equal(t, "Location is required", out.Fields["location"])
	assert.Equal(t, "Gender is required", out.Fields["gender"])
	assert.Equal(t, "You must accept the terms and conditions", out.Fields["terms"])
}

func TestRegister_GenderIsCaseSensitive(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.do(http.MethodPost, RegisterPath, strings.Replace(validBody, `"female"`, `"FEMALE"`, 1))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, map[string]string{"gender": "Gender is required"}, out.Fields)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestServer(t, nil, nil)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, RegisterPath, validBody).Code)

	rec := s.do(http.MethodPost, RegisterPath, strings.Replace(validBody, "ada@example.com", "ADA@example.com", 1))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_TAKEN")
}

func TestRegister_BadRequests(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodPost, RegisterPath, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, RegisterPath, strings.NewReader(validBody))
	req.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = s.do(http.MethodGet, RegisterPath, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRegister_RateLimited(t *testing.T) {
	s := newTestServer(t, rate.NewMemoryLimiter(1, time.Minute), nil)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, RegisterPath, validBody).Code)

	rec := s.do(http.MethodPost, RegisterPath, strings.Replace(validBody, "ada@", "bob@", 1))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestConfirm_Flow(t *testing.T) {
	s := newTestServer(t, nil, nil)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, RegisterPath, validBody).Code)
	require.Len(t, s.mailer.tokens, 1)
	tok := s.mailer.tokens[0]

	rec := s.do(http.MethodGet, ConfirmPath+"?token="+tok, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)

	rec = s.do(http.MethodGet, ConfirmPath+"?token="+tok, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, ConfirmPath+"?token=garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, ConfirmPath, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormSchema(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.do(http.MethodGet, FormPath, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sc service.Schema
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, "Ayen Early Access Registration", sc.Title)
	assert.Len(t, sc.Fields, 6)
	assert.Equal(t, "https://ayen.example/terms", sc.TermsURL)
}

func TestLegalRedirects(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.do(http.MethodGet, "/terms", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://ayen.example/terms", rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/privacy", "")
	assert.Equal(t, "https://ayen.example/privacy", rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, map[string]healthctrl.Check{
		"store": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "").Code)
	rec := s.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"up"`)

	down := newTestServer(t, nil, map[string]healthctrl.Check{
		"cache": func(context.Context) error { return errors.New("down") },
	})
	rec = down.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dropDatabas3/earlyaccess/internal/events"
	"github.com/dropDatabas3/earlyaccess/internal/metrics"
	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
	tokens "github.com/dropDatabas3/earlyaccess/internal/security/token"
)

const replayPrefix = "ea:confirm:jti:"

// Confirm valida el token del link y marca la inscripción como confirmada.
// Cada token (jti) se acepta una sola vez mientras no expire.
func (s *service) Confirm(ctx context.Context, raw string) (*store.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "service.Confirm")
	defer span.End()

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("earlyaccess.confirm"),
		logger.Op("Confirm"),
	)

	if s.deps.Confirmer == nil {
		return nil, ErrConfirmUnavailable
	}

	claims, err := s.deps.Confirmer.Verify(raw)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			s.deps.Metrics.RecordConfirmation(metrics.ResultExpired)
			return nil, ErrTokenExpired
		}
		s.deps.Metrics.RecordConfirmation(metrics.ResultRejected)
		log.Debug("confirm token rejected", logger.Err(err))
		return nil, ErrInvalidToken
	}
	log = log.With(logger.RegistrationID(claims.RegistrationID()))

	current, err := s.deps.Repo.GetByID(ctx, claims.RegistrationID())
	if err != nil {
		return nil, s.confirmStoreError(err, span, log)
	}
	if current.Email != claims.Email {
		// token firmado para otra dirección
		s.deps.Metrics.RecordConfirmation(metrics.ResultRejected)
		return nil, ErrInvalidToken
	}

	claimed := false
	if s.deps.Replay != nil {
		ttl := claims.ExpiresAt.Time.Sub(s.deps.Now())
		if ttl <= 0 {
			ttl = time.Minute
		}
		fresh, err := s.deps.Replay.SetNX(ctx, replayPrefix+claims.ID, claims.RegistrationID(), ttl)
		if err != nil {
			// sin cache no se puede garantizar un solo uso; seguimos (fail open)
			log.Warn("replay cache unavailable", logger.Err(err))
		} else if !fresh {
			s.deps.Metrics.RecordConfirmation(metrics.ResultReused)
			return nil, ErrTokenReused
		}
		claimed = err == nil
	}

	reg, err := s.deps.Repo.MarkConfirmed(ctx, current.ID, s.deps.Now().UTC())
	if err != nil {
		if claimed {
			// el link tiene que seguir sirviendo para reintentar
			if derr := s.deps.Replay.Delete(context.WithoutCancel(ctx), replayPrefix+claims.ID); derr != nil {
				log.Warn("release replay key failed", logger.Err(derr))
			}
		}
		return nil, s.confirmStoreError(err, span, log)
	}

	s.deps.Metrics.RecordConfirmation(metrics.ResultConfirmed)
	s.publish(ctx, events.TypeRegistrationConfirmed, reg, log)
	log.Info("registration confirmed")
	return reg, nil
}

func (s *service) confirmStoreError(err error, span trace.Span, log *zap.Logger) error {
	if errors.Is(err, store.ErrNotFound) {
		s.deps.Metrics.RecordConfirmation(metrics.ResultRejected)
		return ErrRegistrationMissing
	}
	s.deps.Metrics.RecordConfirmation(metrics.ResultError)
	span.RecordError(err)
	span.SetStatus(codes.Error, "confirm")
	log.Error("confirm registration failed", logger.Err(err))
	return fmt.Errorf("confirm registration: %w", err)
}

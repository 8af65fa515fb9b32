package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/dropDatabas3/earlyaccess/internal/events"
	"github.com/dropDatabas3/earlyaccess/internal/metrics"
	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
)

func newID() string { return uuid.NewString() }

func (s *service) Register(ctx context.Context, in RegisterInput) (*store.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "service.Register")
	defer span.End()

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("earlyaccess.register"),
		logger.Op("Register"),
	)

	// El servidor revalida: el cliente puede no haber validado nada.
	if errs := s.deps.Validator.Validate(in.Fields); !errs.Valid() {
		s.deps.Metrics.RecordRegistration(metrics.ResultInvalid)
		span.SetAttributes(attribute.Int("registration.invalid_fields", len(errs)))
		log.Debug("registration rejected", logger.InvalidFields(fieldNames(errs)))
		return nil, errs
	}

	email := in.Fields.NormalizedEmail()
	log = log.With(logger.EmailHash(events.HashEmail(email)))

	// Envíos concurrentes del mismo email comparten una sola inserción. El
	// trabajo compartido no depende del ctx de quien llegó primero: si ese
	// cliente se desconecta, los demás siguen esperando el mismo resultado.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.flight.Do(email, func() (any, error) {
		return s.create(shared, in, email, log)
	})
	if err == nil && !sameApplicant(v.(*store.Registration).Fields, in.Fields) {
		// otro envío con el mismo email y datos distintos ganó la carrera
		err = ErrEmailTaken
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			s.deps.Metrics.RecordRegistration(metrics.ResultDuplicate)
		default:
			s.deps.Metrics.RecordRegistration(metrics.ResultError)
			span.RecordError(err)
			span.SetStatus(codes.Error, "register")
		}
		return nil, err
	}
	reg := v.(*store.Registration)
	span.SetAttributes(attribute.String("registration.id", reg.ID))
	return reg, nil
}

func (s *service) create(ctx context.Context, in RegisterInput, email string, log *zap.Logger) (*store.Registration, error) {
	if _, err := s.deps.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("lookup by email failed", logger.Err(err))
		return nil, fmt.Errorf("lookup registration: %w", err)
	}

	fields := in.Fields
	fields.Email = email
	fields.Location = strings.TrimSpace(in.Fields.Location)

	reg := &store.Registration{
		ID:        s.deps.NewID(),
		Fields:    fields,
		Email:     email,
		Status:    store.StatusPending,
		ClientIP:  in.ClientIP,
		Client:    clientInfo(in.UserAgent),
		CreatedAt: s.deps.Now().UTC(),
	}
	if err := s.deps.Repo.Create(ctx, reg); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		log.Error("create registration failed", logger.Err(err))
		return nil, fmt.Errorf("create registration: %w", err)
	}
	s.deps.Metrics.RecordRegistration(metrics.ResultCreated)
	log = log.With(logger.RegistrationID(reg.ID))
	log.Info("registration created", zap.String("browser", reg.Client.Browser), zap.Bool("mobile", reg.Client.Mobile))

	// Soft fail: la inscripción ya quedó guardada.
	s.publish(ctx, events.TypeRegistrationCreated, reg, log)
	s.sendConfirmation(ctx, reg, log)

	return reg, nil
}

// sameApplicant compara lo que create guarda contra lo que mandó el caller.
func sameApplicant(stored, in registration.Fields) bool {
	return stored.Name == in.Name &&
		stored.DateOfBirth == in.DateOfBirth &&
		stored.Gender == in.Gender &&
		stored.TermsAccepted == in.TermsAccepted &&
		stored.Location == strings.TrimSpace(in.Location)
}

func (s *service) sendConfirmation(ctx context.Context, reg *store.Registration, log *zap.Logger) {
	if s.deps.Confirmer == nil || s.deps.Mailer == nil {
		log.Debug("confirmation email skipped: not configured")
		return
	}
	tok, _, err := s.deps.Confirmer.Issue(reg.ID, reg.Email)
	if err != nil {
		s.deps.Metrics.RecordEmailFailure()
		log.Warn("confirmation token issue failed", logger.Err(err))
		return
	}
	if err := s.deps.Mailer.SendConfirmation(ctx, reg.Email, reg.Fields.Name, tok, s.deps.Confirmer.TTL()); err != nil {
		s.deps.Metrics.RecordEmailFailure()
		log.Warn("confirmation email failed", logger.Err(err))
		return
	}
	log.Debug("confirmation email sent")
}

func (s *service) publish(ctx context.Context, typ string, reg *store.Registration, log *zap.Logger) {
	ev := events.Event{
		Type:           typ,
		RegistrationID: reg.ID,
		EmailHash:      events.HashEmail(reg.Email),
		CreatedAt:      s.deps.Now().UTC(),
	}
	if err := s.deps.Publisher.Publish(ctx, ev); err != nil {
		s.deps.Metrics.RecordPublishFailure()
		log.Warn("event publish failed", zap.String("type", typ), logger.Err(err))
	}
}

func clientInfo(raw string) store.ClientInfo {
	if strings.TrimSpace(raw) == "" {
		return store.ClientInfo{}
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return store.ClientInfo{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}

func fieldNames(errs registration.Errors) []string {
	out := make([]string, 0, len(errs))
	for _, f := range errs.Fields() {
		out = append(out, string(f))
	}
	return out
}

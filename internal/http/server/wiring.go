// Package server arma el grafo de dependencias del servicio de early access
// a partir de la config y expone el handler HTTP listo para servir.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dropDatabas3/earlyaccess/internal/cache"
	"github.com/dropDatabas3/earlyaccess/internal/config"
	"github.com/dropDatabas3/earlyaccess/internal/email"
	"github.com/dropDatabas3/earlyaccess/internal/events"
	eactrl "github.com/dropDatabas3/earlyaccess/internal/http/controllers/earlyaccess"
	healthctrl "github.com/dropDatabas3/earlyaccess/internal/http/controllers/health"
	mw "github.com/dropDatabas3/earlyaccess/internal/http/middlewares"
	"github.com/dropDatabas3/earlyaccess/internal/http/router"
	"github.com/dropDatabas3/earlyaccess/internal/metrics"
	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/rate"
	"github.com/dropDatabas3/earlyaccess/internal/registration/service"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store/memory"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store/pg"
	tokens "github.com/dropDatabas3/earlyaccess/internal/security/token"
	migrations "github.com/dropDatabas3/earlyaccess/migrations/postgres"
)

// Built es el resultado del wiring.
type Built struct {
	Handler http.Handler
	Service service.Service
	Repo    store.Repository

	cleanups []func() error
}

// Close libera los recursos en orden inverso a su creación.
func (b *Built) Close() error {
	var errs []error
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		if err := b.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.cleanups = nil
	return errors.Join(errs...)
}

func (b *Built) onClose(fn func() error) { b.cleanups = append(b.cleanups, fn) }

// Build instancia store, cache, limiters, tokens, mailer, publisher y router.
// Si algo falla, lo ya creado se cierra antes de devolver el error.
func Build(ctx context.Context, cfg *config.Config) (_ *Built, err error) {
	log := logger.From(ctx).With(logger.Component("wiring"))
	b := &Built{}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	reg := prometheus.NewRegistry()
	_ = metrics.Register(reg, collectors.NewGoCollector())
	_ = metrics.Register(reg, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := mw.RegisterHTTPMetrics(reg); err != nil {
		return nil, fmt.Errorf("wiring: http metrics: %w", err)
	}
	regMetrics, err := metrics.NewRegistration(reg)
	if err != nil {
		return nil, fmt.Errorf("wiring: registration metrics: %w", err)
	}

	// 1. Store
	repo, pool, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b.Repo = repo
	b.onClose(repo.Close)
	if pool != nil {
		_ = metrics.Register(reg, metrics.NewPoolCollector(func() *pgxpool.Pool { return pool }))
	}
	log.Info("store ready", logger.String("driver", cfg.Storage.Driver))

	// 2. Cache (anti-replay de tokens)
	cc, err := cache.New(ctx, cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("wiring: cache: %w", err)
	}
	b.onClose(cc.Close)

	// 3. Rate limiters (comparten redis si está)
	var registerLimit, confirmLimit rate.Limiter
	if cfg.Rate.Enabled {
		registerLimit, confirmLimit = buildLimiters(cfg, cc)
	}

	// 4. Tokens + mail
	confirmer, err := buildConfirmer(cfg, log)
	if err != nil {
		return nil, err
	}
	tpl, err := email.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("wiring: email templates: %w", err)
	}
	mailer := email.NewMailer(buildSender(cfg), tpl, cfg.Email.BaseURL, cfg.App.Product)

	// 5. Eventos
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(ctx, events.KafkaConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ClientID:    "earlyaccess",
			EnsureTopic: cfg.Kafka.EnsureTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("wiring: kafka: %w", err)
		}
		publisher = kp
		log.Info("kafka publisher ready", logger.String("topic", cfg.Kafka.Topic))
	}
	b.onClose(publisher.Close)

	// 6. Servicio + HTTP
	b.Service = service.New(service.Deps{
		Repo:      repo,
		Confirmer: confirmer,
		Mailer:    mailer,
		Publisher: publisher,
		Replay:    cc,
		Metrics:   regMetrics,
		Legal:     service.Legal{TermsURL: cfg.Legal.TermsURL, PrivacyURL: cfg.Legal.PrivacyURL},
	})

	checks := map[string]healthctrl.Check{
		"store": repo.Ping,
		"cache": cc.Ping,
	}
	var metricsHandler http.Handler
	if cfg.Server.MetricsEnabled {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	b.Handler = router.New(router.Deps{
		EarlyAccess:   eactrl.NewController(b.Service),
		Legal:         eactrl.NewLegalController(cfg.Legal.TermsURL, cfg.Legal.PrivacyURL),
		Health:        healthctrl.NewController(checks),
		Metrics:       metricsHandler,
		Logger:        logger.L(),
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
		RegisterLimit: registerLimit,
		ConfirmLimit:  confirmLimit,
	})
	return b, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Repository, *pgxpool.Pool, error) {
	switch cfg.Storage.Driver {
	case "postgres", "pg":
		s, err := pg.Connect(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MinIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("wiring: postgres: %w", err)
		}
		applied, err := pg.Migrate(ctx, s.Pool(), migrations.FS, migrations.Dir, pg.Up, 0)
		if err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("wiring: migrations: %w", err)
		}
		if len(applied) > 0 {
			logger.From(ctx).Info("migrations applied", logger.Any("files", applied))
		}
		return s, s.Pool(), nil
	default:
		return memory.New(), nil, nil
	}
}

func buildLimiters(cfg *config.Config, cc cache.Client) (rate.Limiter, rate.Limiter) {
	if rc, ok := cc.(*cache.Redis); ok {
		prefix := cfg.Cache.Redis.Prefix + ":rl"
		return rate.NewRedisLimiter(rc.Underlying(), prefix+":register", cfg.Rate.Register.Limit, cfg.Rate.Register.Window),
			rate.NewRedisLimiter(rc.Underlying(), prefix+":confirm", cfg.Rate.Confirm.Limit, cfg.Rate.Confirm.Window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Register.Limit, cfg.Rate.Register.Window),
		rate.NewMemoryLimiter(cfg.Rate.Confirm.Limit, cfg.Rate.Confirm.Window)
}

// buildConfirmer: fuera de prod un secret vacío se reemplaza por uno efímero
// (los links dejan de valer al reiniciar). En prod Validate ya lo exige.
func buildConfirmer(cfg *config.Config, log *zap.Logger) (*tokens.Confirmer, error) {
	secret := cfg.Confirm.Secret
	if secret == "" && !cfg.IsProd() {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("wiring: confirm secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		log.Warn("CONFIRM_SECRET not set, using an ephemeral secret")
	}
	c, err := tokens.NewConfirmer(secret, cfg.Confirm.Issuer, cfg.Confirm.TTL)
	if err != nil {
		return nil, fmt.Errorf("wiring: confirmer: %w", err)
	}
	return c, nil
}

func buildSender(cfg *config.Config) email.Sender {
	if cfg.Email.Driver == "smtp" {
		return email.NewSMTPSender(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			FromEmail:          cfg.SMTP.From,
			TLSMode:            cfg.SMTP.TLSMode,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})
	}
	return email.LogSender{Log: logger.Named("email"), EchoBody: cfg.Email.DebugEchoLink}
}

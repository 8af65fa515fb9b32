// Package config carga la configuración: YAML opcional + defaults + variables de entorno.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/earlyaccess/internal/email"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"app_env"`
		LogLevel string `yaml:"log_level"`
		Product  string `yaml:"product"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		PublicBaseURL      string        `yaml:"public_base_url"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
		MetricsEnabled     bool          `yaml:"metrics_enabled"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int           `yaml:"max_open_conns"`
			MaxIdleConns    int           `yaml:"max_idle_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Rate struct {
		Enabled  bool        `yaml:"enabled"`
		Register LimitConfig `yaml:"register"`
		Confirm  LimitConfig `yaml:"confirm"`
	} `yaml:"rate"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLSMode            string `yaml:"tls_mode"`
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Email struct {
		// smtp | log
		Driver        string `yaml:"driver"`
		BaseURL       string `yaml:"base_url"`
		DebugEchoLink bool   `yaml:"debug_echo_links"`
	} `yaml:"email"`

	Confirm struct {
		Secret string        `yaml:"secret"`
		Issuer string        `yaml:"issuer"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"confirm"`

	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		Topic       string   `yaml:"topic"`
		EnsureTopic bool     `yaml:"ensure_topic"`
	} `yaml:"kafka"`

	Legal struct {
		TermsURL   string `yaml:"terms_url"`
		PrivacyURL string `yaml:"privacy_url"`
	} `yaml:"legal"`
}

// LimitConfig es un límite fixed window.
type LimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// Load lee path (si no es "") y aplica defaults y env. No valida: llamar Validate.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

// Default devuelve la configuración sin archivo ni env (tests / dev).
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.Product == "" {
		c.App.Product = "Ayen"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PublicBaseURL == "" {
		host := c.Server.Addr
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		c.Server.PublicBaseURL = "http://" + host
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "ea"
	}
	if c.Rate.Register.Limit == 0 {
		c.Rate.Register.Limit = 5
	}
	if c.Rate.Register.Window == 0 {
		c.Rate.Register.Window = 10 * time.Minute
	}
	if c.Rate.Confirm.Limit == 0 {
		c.Rate.Confirm.Limit = 20
	}
	if c.Rate.Confirm.Window == 0 {
		c.Rate.Confirm.Window = time.Minute
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLSMode == "" {
		c.SMTP.TLSMode = email.TLSAuto
	}
	if c.Email.Driver == "" {
		c.Email.Driver = "log"
		if c.SMTP.Host != "" {
			c.Email.Driver = "smtp"
		}
	}
	if c.Email.BaseURL == "" {
		c.Email.BaseURL = c.Server.PublicBaseURL
	}
	if c.Confirm.Issuer == "" {
		c.Confirm.Issuer = "earlyaccess"
	}
	if c.Confirm.TTL == 0 {
		c.Confirm.TTL = 72 * time.Hour
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "earlyaccess.registrations"
	}
	if c.Legal.TermsURL == "" {
		c.Legal.TermsURL = "/terms"
	}
	if c.Legal.PrivacyURL == "" {
		c.Legal.PrivacyURL = "/privacy"
	}
}

// IsProd reporta si app.env es prod/production.
func (c *Config) IsProd() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_PUBLIC_BASE_URL"); ok {
		c.Server.PublicBaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvBool("SERVER_METRICS_ENABLED"); ok {
		c.Server.MetricsEnabled = v
	}
	if v, ok := getEnvDur("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvDur("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_REGISTER_LIMIT"); ok {
		c.Rate.Register.Limit = v
	}
	if v, ok := getEnvDur("RATE_REGISTER_WINDOW"); ok {
		c.Rate.Register.Window = v
	}
	if v, ok := getEnvInt("RATE_CONFIRM_LIMIT"); ok {
		c.Rate.Confirm.Limit = v
	}
	if v, ok := getEnvDur("RATE_CONFIRM_WINDOW"); ok {
		c.Rate.Confirm.Window = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLSMode = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// EMAIL
	if v, ok := getEnvStr("EMAIL_DRIVER"); ok {
		c.Email.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("EMAIL_BASE_URL"); ok {
		c.Email.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := getEnvBool("EMAIL_DEBUG_ECHO"); ok {
		c.Email.DebugEchoLink = v
	}

	// CONFIRM
	if v, ok := getEnvStr("CONFIRM_SECRET"); ok {
		c.Confirm.Secret = v
	}
	if v, ok := getEnvDur("CONFIRM_TTL"); ok {
		c.Confirm.TTL = v
	}

	// KAFKA
	if v, ok := getEnvCSV("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = v
	}
	if v, ok := getEnvStr("KAFKA_TOPIC"); ok {
		c.Kafka.Topic = v
	}
	if v, ok := getEnvBool("KAFKA_ENSURE_TOPIC"); ok {
		c.Kafka.EnsureTopic = v
	}

	// LEGAL
	if v, ok := getEnvStr("LEGAL_TERMS_URL"); ok {
		c.Legal.TermsURL = v
	}
	if v, ok := getEnvStr("LEGAL_PRIVACY_URL"); ok {
		c.Legal.PrivacyURL = v
	}
}

// Validate verifica los valores críticos. Devuelve todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "memory":
	case "postgres", "pg":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (memory|postgres)", c.Storage.Driver))
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q not supported (memory|redis)", c.Cache.Kind))
	}
	switch c.Email.Driver {
	case "log":
	case "smtp":
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			errs = append(errs, errors.New("smtp.host and smtp.from are required for email.driver=smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("email.driver %q not supported (smtp|log)", c.Email.Driver))
	}
	if !email.ValidTLSMode(c.SMTP.TLSMode) {
		errs = append(errs, fmt.Errorf("smtp.tls_mode %q not supported", c.SMTP.TLSMode))
	}
	if c.Rate.Enabled && (c.Rate.Register.Limit <= 0 || c.Rate.Register.Window <= 0) {
		errs = append(errs, errors.New("rate.register needs a positive limit and window"))
	}
	if c.IsProd() {
		if len(c.Confirm.Secret) < 32 {
			errs = append(errs, errors.New("confirm.secret must be at least 32 bytes in prod"))
		}
		if c.Email.Driver == "log" {
			errs = append(errs, errors.New("email.driver=log is not allowed in prod"))
		}
		if c.Storage.Driver == "memory" {
			errs = append(errs, errors.New("storage.driver=memory is not allowed in prod"))
		}
	}
	return errors.Join(errs...)
}

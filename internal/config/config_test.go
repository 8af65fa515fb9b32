package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "http://localhost:8080", c.Server.PublicBaseURL)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, "log", c.Email.Driver)
	assert.Equal(t, c.Server.PublicBaseURL, c.Email.BaseURL)
	assert.Equal(t, 72*time.Hour, c.Confirm.TTL)
	assert.Equal(t, 5, c.Rate.Register.Limit)
	assert.NoError(t, c.Validate())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	p := writeYAML(t, `
app:
  app_env: staging
server:
  addr: ":9000"
storage:
  driver: postgres
  dsn: postgres://file
smtp:
  host: smtp.example.com
  from: hi@example.com
kafka:
  brokers: [a:9092]
`)
	t.Setenv("STORAGE_DSN", "postgres://env")
	t.Setenv("KAFKA_BROKERS", "b:9092, c:9092")
	t.Setenv("RATE_REGISTER_WINDOW", "1m")
	t.Setenv("APP_ENV", "STAGING")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "staging", c.App.Env)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, "postgres://env", c.Storage.DSN)
	assert.Equal(t, []string{"b:9092", "c:9092"}, c.Kafka.Brokers)
	assert.Equal(t, time.Minute, c.Rate.Register.Window)
	// smtp.host presente => driver smtp por default
	assert.Equal(t, "smtp", c.Email.Driver)
	assert.NoError(t, c.Validate())
}

func TestLoad_BadEnvValuesIgnored(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("CONFIRM_TTL", "forever")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 587, c.SMTP.Port)
	assert.Equal(t, 72*time.Hour, c.Confirm.TTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		ok   bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "mysql" }, false},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, false},
		{"unknown cache", func(c *Config) { c.Cache.Kind = "memcached" }, false},
		{"smtp without host", func(c *Config) { c.Email.Driver = "smtp" }, false},
		{"bad tls", func(c *Config) { c.SMTP.TLSMode = "tls13" }, false},
		{"prod without secret", func(c *Config) {
			c.App.Env = "prod"
			c.Storage.Driver = "postgres"
			c.Storage.DSN = "postgres://x"
			c.Email.Driver = "smtp"
			c.SMTP.Host, c.SMTP.From = "h", "f@x.io"
		}, false},
		{"prod complete", func(c *Config) {
			c.App.Env = "prod"
			c.Storage.Driver = "postgres"
			c.Storage.DSN = "postgres://x"
			c.Email.Driver = "smtp"
			c.SMTP.Host, c.SMTP.From = "h", "f@x.io"
			c.Confirm.Secret = "0123456789abcdef0123456789abcdef"
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mut(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

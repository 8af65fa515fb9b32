package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------------

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// ---------------------------------------------------------------------------------
// Negocio
// ---------------------------------------------------------------------------------

// RegistrationID identifica una inscripción persistida.
func RegistrationID(v string) zap.Field { return zap.String("registration_id", v) }

// EmailHash loguea el fingerprint del email, nunca el email en claro.
func EmailHash(v string) zap.Field { return zap.String("email_hash", v) }

// Outcome es el resultado de un intento de submit del formulario.
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// InvalidFields lista los campos rechazados por el validador.
func InvalidFields(v []string) zap.Field { return zap.Strings("invalid_fields", v) }

// ---------------------------------------------------------------------------------
// Sistema
// ---------------------------------------------------------------------------------

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field { return zap.Error(err) }

// ---------------------------------------------------------------------------------
// Genéricos
// ---------------------------------------------------------------------------------

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }

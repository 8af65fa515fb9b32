package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestFrom_FallsBackToSingleton(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	From(context.Background()).Info("hello")
	assert.Equal(t, 1, logs.Len())
}

func TestFrom_UsesScopedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	scoped := zap.New(core).With(RequestID("rid-1"))

	ctx := ToContext(context.Background(), scoped)
	From(ctx).Info("scoped")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "rid-1", entries[0].ContextMap()["request_id"])
	}
}

func TestBuild_Prod(t *testing.T) {
	l := Build(Config{Env: "prod", Level: "warn", ServiceName: "earlyaccess"})
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestReplace_RestoreWithoutPriorSingleton(t *testing.T) {
	mu.Lock()
	saved := instance
	instance = nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		instance = saved
		mu.Unlock()
	})

	restore := Replace(zap.NewNop())
	restore()

	l := L()
	if assert.NotNil(t, l) {
		assert.NotPanics(t, func() { From(context.Background()).With(Op("restore")).Info("ok") })
	}
}

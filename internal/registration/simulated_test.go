package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulated_Succeeds(t *testing.T) {
	err := Simulated{Delay: time.Millisecond}.Register(context.Background(), Fields{})
	assert.NoError(t, err)
}

func TestSimulated_ReturnsConfiguredError(t *testing.T) {
	boom := errors.New("boom")
	err := Simulated{Err: boom}.Register(context.Background(), Fields{})
	assert.ErrorIs(t, err, boom)
}

func TestSimulated_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Simulated{Delay: time.Hour}.Register(ctx, Fields{})
	assert.ErrorIs(t, err, context.Canceled)
}

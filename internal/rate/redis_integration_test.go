//go:build integration

package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/earlyaccess/internal/testutil/containers"
)

func TestRedisLimiter_Integration(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	l := NewRedisLimiter(rc.Client, "", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		r, err := l.Allow(ctx, "ip 1")
		require.NoError(t, err)
		assert.True(t, r.Allowed)
	}
	r, err := l.Allow(ctx, "ip 1")
	require.NoError(t, err)
	assert.False(t, r.Allowed)
	assert.Greater(t, r.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, r.RetryAfter, time.Minute)
}

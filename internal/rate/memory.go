package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es el fixed window en proceso (un solo nodo / dev).
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration

	now func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, window),
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", strings.ReplaceAll(key, " ", "_"), winStart.Unix())
	ttl := winStart.Add(l.Window).Sub(now)

	// Add solo crea el contador en el primer hit de la ventana
	_ = l.c.Add(k, int64(0), l.Window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// expiró entre Add e Increment
		l.c.Set(k, int64(1), l.Window)
		hits = 1
	}
	return buildResult(hits, l.Max, ttl, l.Window), nil
}

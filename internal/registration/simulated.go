package registration

import (
	"context"
	"time"
)

// DefaultSimulatedDelay es la espera por defecto del registrador simulado.
const DefaultSimulatedDelay = 2 * time.Second

// Simulated es un registrador que sólo espera Delay y devuelve éxito.
// Sirve para demos y para el CLI sin backend; respeta la cancelación del ctx.
type Simulated struct {
	Delay time.Duration
	// Err, si no es nil, se devuelve tras la espera (útil para ensayar el camino de fallo).
	Err error
}

// Register implementa form.Registrar.
func (s Simulated) Register(ctx context.Context, _ Fields) error {
	d := s.Delay
	if d < 0 {
		d = 0
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return s.Err
	}
}

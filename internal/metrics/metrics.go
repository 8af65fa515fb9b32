// Package metrics define las métricas Prometheus de dominio. Vive separado de
// internal/http para que service y http no se importen entre sí.
package metrics

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de registro.
const (
	ResultCreated   = "created"
	ResultInvalid   = "invalid"
	ResultDuplicate = "duplicate"
	ResultError     = "error"
)

// Resultados de confirmación.
const (
	ResultConfirmed = "confirmed"
	ResultReused    = "reused"
	ResultExpired   = "expired"
	ResultRejected  = "rejected"
)

// Registration agrupa los contadores del flujo de early access.
// Un *Registration nil es válido: los Record* no hacen nada.
type Registration struct {
	registrations  *prometheus.CounterVec
	confirmations  *prometheus.CounterVec
	emailFailures  prometheus.Counter
	publishFailure prometheus.Counter
}

// NewRegistration crea y registra los contadores (default registerer si reg es nil).
func NewRegistration(reg prometheus.Registerer) (*Registration, error) {
	m := &Registration{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earlyaccess_registrations_total",
			Help: "Inscripciones de early access por resultado",
		}, []string{"result"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earlyaccess_confirmations_total",
			Help: "Confirmaciones de email por resultado",
		}, []string{"result"}),
		emailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "earlyaccess_confirmation_email_failures_total",
			Help: "Emails de confirmación que no se pudieron enviar",
		}),
		publishFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "earlyaccess_event_publish_failures_total",
			Help: "Eventos de dominio que no se pudieron publicar",
		}),
	}
	for _, c := range []prometheus.Collector{m.registrations, m.confirmations, m.emailFailures, m.publishFailure} {
		if err := Register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Registration) RecordRegistration(result string) {
	if m != nil {
		m.registrations.WithLabelValues(result).Inc()
	}
}

func (m *Registration) RecordConfirmation(result string) {
	if m != nil {
		m.confirmations.WithLabelValues(result).Inc()
	}
}

func (m *Registration) RecordEmailFailure() {
	if m != nil {
		m.emailFailures.Inc()
	}
}

func (m *Registration) RecordPublishFailure() {
	if m != nil {
		m.publishFailure.Inc()
	}
}

// Register registra el collector en reg (o el default), ignorando duplicados.
func Register(reg prometheus.Registerer, c prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// PoolCollector expone gauges del pool pgx del store.
type PoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func NewPoolCollector(pool func() *pgxpool.Pool) *PoolCollector {
	return &PoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("earlyaccess_pgxpool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("earlyaccess_pgxpool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("earlyaccess_pgxpool_total", "Conexiones totales", nil, nil),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	pool := c.pool()
	if pool == nil {
		return
	}
	stat := pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewRegistration(reg)
	require.NoError(t, err)

	m.RecordRegistration(ResultCreated)
	m.RecordRegistration(ResultCreated)
	m.RecordRegistration(ResultDuplicate)
	m.RecordConfirmation(ResultReused)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.registrations.WithLabelValues(ResultCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues(ResultDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.confirmations.WithLabelValues(ResultReused)))
}

func TestRegistration_NilIsNoop(t *testing.T) {
	var m *Registration
	assert.NotPanics(t, func() {
		m.RecordRegistration(ResultCreated)
		m.RecordConfirmation(ResultConfirmed)
		m.RecordEmailFailure()
		m.RecordPublishFailure()
	})
}

func TestRegister_IgnoresDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "x_total", Help: "x"})
	require.NoError(t, Register(reg, c))
	require.NoError(t, Register(reg, c))
}

func TestPoolCollector_NilPool(t *testing.T) {
	c := NewPoolCollector(nil)
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}

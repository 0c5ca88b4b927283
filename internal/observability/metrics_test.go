package observability

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveEncounter("hp", true)
	m.ObserveEncounter("hp", true)
	m.ObserveEncounter("dipl", false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Encounters.WithLabelValues("hp", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Encounters.WithLabelValues("dipl", "false")))

	m.ObserveOutcome("attack", true)
	m.ObserveOutcome("talk", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("attack", "win")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("talk", "loss")))

	m.ObserveMutation("equip", nil)
	m.ObserveMutation("equip", errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("equip", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("equip", "error")))

	m.AddAnomalies(3)
	m.AddAnomalies(0)
	m.AddAnomalies(-2)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Anomalies))
}

func TestMetrics_LockWait(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveLockWait(3 * time.Millisecond)

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP adventure_character_lock_wait_seconds Time spent waiting for a per-character lock
# TYPE adventure_character_lock_wait_seconds histogram
adventure_character_lock_wait_seconds_bucket{le="0.0005"} 0
adventure_character_lock_wait_seconds_bucket{le="0.001"} 0
adventure_character_lock_wait_seconds_bucket{le="0.005"} 1
adventure_character_lock_wait_seconds_bucket{le="0.01"} 1
adventure_character_lock_wait_seconds_bucket{le="0.05"} 1
adventure_character_lock_wait_seconds_bucket{le="0.1"} 1
adventure_character_lock_wait_seconds_bucket{le="0.5"} 1
adventure_character_lock_wait_seconds_bucket{le="1"} 1
adventure_character_lock_wait_seconds_bucket{le="2.5"} 1
adventure_character_lock_wait_seconds_bucket{le="5"} 1
adventure_character_lock_wait_seconds_bucket{le="+Inf"} 1
adventure_character_lock_wait_seconds_sum 0.003
adventure_character_lock_wait_seconds_count 1
`), "adventure_character_lock_wait_seconds")
	require.NoError(t, err)
}

func TestNewMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

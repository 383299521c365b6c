package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_LoadFinished(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	recorder := NewPrometheus(reg)

	recorder.LoadFinished("AppConfig", OutcomeSuccess, 2*time.Millisecond, 0)
	recorder.LoadFinished("AppConfig", OutcomeInvalid, time.Millisecond, 3)
	recorder.LoadFinished("AppConfig", OutcomeInvalid, time.Millisecond, 1)

	assert.InDelta(t, 1, testutil.ToFloat64(recorder.loads.WithLabelValues("AppConfig", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(recorder.loads.WithLabelValues("AppConfig", "invalid")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(recorder.fieldErrors.WithLabelValues("AppConfig")), 0)

	count, err := testutil.GatherAndCount(reg, "hjarta_config_load_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewPrometheus(reg)

	assert.Panics(t, func() { NewPrometheus(reg) })
}

func TestNop(t *testing.T) {
	t.Parallel()

	var recorder Recorder = Nop{}

	assert.NotPanics(t, func() { recorder.LoadFinished("AppConfig", OutcomeError, 0, 0) })
}

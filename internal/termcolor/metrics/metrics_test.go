package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncSave("updated")
	m.IncSave("updated")
	m.IncSave("rejected")
	m.IncRead("hit")
	m.ObserveSave(time.Now())

	assert.InDelta(t, 2, testutil.ToFloat64(m.Saves.WithLabelValues("updated")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Saves.WithLabelValues("rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Reads.WithLabelValues("hit")), 0)

	n, err := testutil.GatherAndCount(reg, "termcolor_save_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_SeparateRegistries(t *testing.T) {
	// Each registry gets its own collectors; no duplicate registration panic.
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

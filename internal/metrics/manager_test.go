package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounters(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.SessionOpened(false)
	m.SessionOpened(true)
	m.SessionOpened(true)
	m.SessionFinished()
	m.PersistFailed()
	m.SuggestionResult("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSessionsOpened.WithLabelValues("false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterSessionsOpened.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSessionsFinished))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterPersistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSuggestions.WithLabelValues("ok")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fittrack_test_player_sessions_finished")
}

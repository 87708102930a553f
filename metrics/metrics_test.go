package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry).(prometheusMetrics)

	m.AddPlayerRegistered("ranked")
	m.AddPlayerRegistered("ranked")
	m.AddRegistrationRejected("ranked", "invalid_player_id")
	m.AddMatchCreated("ranked", 100)
	m.AddPlayerRequeued("ranked")
	m.AddPlayerCancelled("ranked")
	m.WaitingPlayers("ranked", 7)
	m.AddRequestMatchElapsedTime("ranked", 15*time.Microsecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.playersRegistered.WithLabelValues("ranked")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.registrationsRejected.WithLabelValues("ranked", "invalid_player_id")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.matchesCreated.WithLabelValues("ranked")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.playersRequeued.WithLabelValues("ranked")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.playersCancelled.WithLabelValues("ranked")))
	require.Equal(t, 7.0, testutil.ToFloat64(m.waitingPlayers.WithLabelValues("ranked")))

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type MatchmakingMetrics interface {
	AddPlayerRegistered(matchPool string)
	AddRegistrationRejected(matchPool string, reason string)
	AddPlayerCancelled(matchPool string)
	AddPlayerRequeued(matchPool string)
	AddMatchCreated(matchPool string, ratingGap int)
	WaitingPlayers(matchPool string, numPlayers int)
	AddRequestMatchElapsedTime(matchPool string, elapsedTime time.Duration)
}

func NewMetrics(registry *prometheus.Registry) MatchmakingMetrics {
	return setupPrometheusMetrics(registry)
}

type noopMetrics struct{}

// NewNoopMetrics returns metrics that record nothing
func NewNoopMetrics() MatchmakingMetrics {
	return noopMetrics{}
}

func (noopMetrics) AddPlayerRegistered(matchPool string) {}
func (noopMetrics) AddRegistrationRejected(matchPool string, reason string) {}
func (noopMetrics) AddPlayerCancelled(matchPool string) {}
func (noopMetrics) AddPlayerRequeued(matchPool string) {}
func (noopMetrics) AddMatchCreated(matchPool string, ratingGap int) {}
func (noopMetrics) WaitingPlayers(matchPool string, numPlayers int) {}
func (noopMetrics) AddRequestMatchElapsedTime(matchPool string, elapsedTime time.Duration) {}

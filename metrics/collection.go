package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	playersRegistered     prometheus.CounterVec
	registrationsRejected prometheus.CounterVec
	playersCancelled      prometheus.CounterVec
	playersRequeued       prometheus.CounterVec
	matchesCreated        prometheus.CounterVec
	matchRatingGap        prometheus.HistogramVec
	waitingPlayers        prometheus.GaugeVec
	requestMatchElapsed   prometheus.HistogramVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)
	poolLabel := []string{"matchpool"}

	playersRegistered := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mm_players_registered_total",
			Help: "Number of players added to the arrival queue",
		}, poolLabel)
	registrationsRejected := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mm_registrations_rejected_total",
			Help: "Number of rejected player registrations by reason",
		}, append(poolLabel, "reason"))
	playersCancelled := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mm_players_cancelled_total",
			Help: "Number of waiting players removed before being matched",
		}, poolLabel)
	playersRequeued := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mm_players_requeued_total",
			Help: "Number of match attempts that sent the head player to the back of the queue",
		}, poolLabel)
	matchesCreated := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mm_matches_created_total",
			Help: "Number of matches created",
		}, poolLabel)
	matchRatingGap := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mm_match_rating_gap",
			Help:    "A histogram of the rating difference between matched players",
			Buckets: prometheus.LinearBuckets(0, 25, 9),
		}, poolLabel)
	waitingPlayers := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mm_waiting_players",
			Help: "Number of players currently waiting in the arrival queue",
		}, poolLabel)
	//nolint:promlinter
	requestMatchElapsed := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mm_request_match_elapsed_time_us",
			Help:    "A histogram of request match elapsed time in microseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, poolLabel)

	return prometheusMetrics{
		playersRegistered:     *playersRegistered,
		registrationsRejected: *registrationsRejected,
		playersCancelled:      *playersCancelled,
		playersRequeued:       *playersRequeued,
		matchesCreated:        *matchesCreated,
		matchRatingGap:        *matchRatingGap,
		waitingPlayers:        *waitingPlayers,
		requestMatchElapsed:   *requestMatchElapsed,
	}
}

func (metrics prometheusMetrics) AddPlayerRegistered(matchPool string) {
	metrics.playersRegistered.With(prometheus.Labels{"matchpool": matchPool}).Inc()
}

func (metrics prometheusMetrics) AddRegistrationRejected(matchPool string, reason string) {
	metrics.registrationsRejected.With(prometheus.Labels{"matchpool": matchPool, "reason": reason}).Inc()
}

func (metrics prometheusMetrics) AddPlayerCancelled(matchPool string) {
	metrics.playersCancelled.With(prometheus.Labels{"matchpool": matchPool}).Inc()
}

func (metrics prometheusMetrics) AddPlayerRequeued(matchPool string) {
	metrics.playersRequeued.With(prometheus.Labels{"matchpool": matchPool}).Inc()
}

func (metrics prometheusMetrics) AddMatchCreated(matchPool string, ratingGap int) {
	metrics.matchesCreated.With(prometheus.Labels{"matchpool": matchPool}).Inc()
	metrics.matchRatingGap.With(prometheus.Labels{"matchpool": matchPool}).Observe(float64(ratingGap))
}

func (metrics prometheusMetrics) WaitingPlayers(matchPool string, numPlayers int) {
	metrics.waitingPlayers.With(prometheus.Labels{"matchpool": matchPool}).Set(float64(numPlayers))
}

func (metrics prometheusMetrics) AddRequestMatchElapsedTime(matchPool string, elapsedTime time.Duration) {
	metrics.requestMatchElapsed.With(prometheus.Labels{"matchpool": matchPool}).Observe(float64(elapsedTime.Microseconds()))
}

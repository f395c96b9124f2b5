package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_checkins_total",
			Help: "Total number of committed check-ins",
		},
		[]string{"reward_minted"},
	)

	RewardsRedeemed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_rewards_redeemed_total",
			Help: "Total number of redeemed rewards",
		},
	)

	SMSSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_sms_sent_total",
			Help: "Total number of sms notifications by final status",
		},
		[]string{"status"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_events_processed_total",
			Help: "Total number of loyalty events handled by workers",
		},
		[]string{"type", "result"},
	)

	CheckInDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loyalty_checkin_duration_seconds",
			Help:    "Duration of check-in transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func RecordCheckIn(rewardMinted bool, seconds float64) {
	CheckIns.WithLabelValues(strconv.FormatBool(rewardMinted)).Inc()
	CheckInDuration.Observe(seconds)
}

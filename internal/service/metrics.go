package service

import (
	"errors"
	"time"

	"todo_webapp/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BoardMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_mutations_total",
			Help: "Board operations by outcome",
		},
		[]string{"op", "result"},
	)
	StoreCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_store_call_duration_seconds",
			Help:    "Latency of task store calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "result"},
	)
)

func init() {
	prometheus.MustRegister(BoardMutations)
	prometheus.MustRegister(StoreCallDuration)
}

func countMutation(op string, err error) {
	BoardMutations.WithLabelValues(op, resultLabel(err)).Inc()
}

func observeStoreCall(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreCallDuration.WithLabelValues(op, result).Observe(d.Seconds())
}

func resultLabel(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPromptCancelled), errors.Is(err, ErrDeleteDeclined):
		return "cancelled"
	case errors.Is(err, domain.ErrEmptyText), errors.Is(err, domain.ErrMissingDeadline):
		return "invalid"
	case errors.As(err, &remote):
		return "remote_error"
	case errors.Is(err, domain.ErrTaskNotFound):
		return "not_found"
	default:
		return "error"
	}
}

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSent      = "sent"
	outcomeFailed    = "failed"
	outcomeSimulated = "simulated"
)

var (
	recipientCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sagov",
		Subsystem: "dispatch",
		Name:      "recipients_total",
		Help:      "The total number of newsletter recipients processed, by outcome",
	}, []string{"outcome"})

	runCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sagov",
		Subsystem: "dispatch",
		Name:      "runs_total",
		Help:      "The total number of newsletter dispatch runs",
	})
)

package db

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loanTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_loan_transitions_total",
			Help: "Loan transitions attempted, by event and result (applied/skipped).",
		},
		[]string{"event", "result"},
	)

	requestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_requests_total",
			Help: "Requests created, by outcome (full/partial).",
		},
		[]string{"outcome"},
	)

	loanRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lending_loan_rejections_total",
			Help: "Loan creations rejected because the record already had an active loan.",
		},
	)
)

package api

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeConfirmed       = "confirmed"
	outcomeExpired         = "expired"
	outcomeAlreadyVerified = "already_verified"
	outcomeEmailTaken      = "email_taken"
	outcomeNotFound        = "not_found"
	outcomeError           = "error"
)

var confirmOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "confirm_outcomes_total",
		Help: "Confirmation link visits by outcome",
	},
	[]string{"outcome"},
)

var confirmRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "confirm_requests_total",
		Help: "Confirmation emails requested through the API by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(confirmOutcomes)
	prometheus.MustRegister(confirmRequests)
}

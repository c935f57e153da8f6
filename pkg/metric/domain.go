package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts register and login attempt by its result (ok, invalid, conflict, unauthorized, error).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appstore",
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by result.",
		},
		[]string{"action", "result"},
	)

	Downloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "appstore",
		Name:      "app_downloads_total",
		Help:      "Download counter increments accepted.",
	})

	Ratings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "appstore",
		Name:      "app_ratings_total",
		Help:      "Ratings submitted.",
	})
)

package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_logins_total",
		Help: "Total number of successful logins.",
	})

	purchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_purchases_total",
		Help: "Total number of recorded package purchases.",
	})

	imageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_image_uploads_total",
			Help: "Total number of image uploads by kind and status.",
		},
		[]string{"kind", "status"},
	)

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_token_verifications_total",
			Help: "Total number of session token verification attempts by status.",
		},
		[]string{"status"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignaturesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "petitiond_signatures_submitted_total",
		Help: "Signature submissions accepted (pre-verification).",
	})

	SignaturesVerified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "petitiond_signatures_verified_total",
		Help: "Verification tokens successfully consumed.",
	})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petitiond_emails_total",
		Help: "Email dispatch attempts by kind and outcome.",
	}, []string{"kind", "status"})

	CaptchaChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petitiond_captcha_checks_total",
		Help: "Captcha verification outcomes.",
	}, []string{"result"})
)

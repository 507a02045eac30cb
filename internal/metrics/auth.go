// Package metrics holds the auth-domain Prometheus collectors. They live
// outside internal/http so services and the email notifier can record
// without importing the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_operations_total",
		Help: "Session operations by outcome",
	}, []string{"op", "outcome"})

	OTPIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_otp_issued_total",
		Help: "Verification codes issued, by kind (initial|resend)",
	}, []string{"kind"})

	EmailNotifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_email_notifications_total",
		Help: "Notification emails by kind and delivery result",
	}, []string{"kind", "result"})

	RefreshReplays = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_refresh_replays_total",
		Help: "Refresh tokens presented after they were already rotated",
	})
)

// Register adds the auth collectors to reg (default registerer if nil).
// Already-registered collectors are ignored.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{AuthOperations, OTPIssued, EmailNotifications, RefreshReplays} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Outcome records one session operation. outcome is "ok" or an error code.
func Outcome(op, outcome string) {
	AuthOperations.WithLabelValues(op, outcome).Inc()
}

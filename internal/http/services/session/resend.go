package session

import (
	"context"
	"strings"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/metrics"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// ResendOTP replaces the pending registration's code, subject to the resend
// throttle. Throttle refusals are *otp.ThrottleError.
func (m *Manager) ResendOTP(ctx context.Context, in dto.ResendOTPRequest) (err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.resend"),
		logger.Op("ResendOTP"),
	)
	defer func() { metrics.Outcome("resend_otp", outcome(err)) }()

	emailAddr := strings.TrimSpace(in.Email)
	if emailAddr == "" {
		return ErrMissingFields
	}

	p, code, err := m.otp.Resend(ctx, emailAddr)
	if err != nil {
		log.Debug("resend refused", logger.Err(err))
		return err
	}

	metrics.OTPIssued.WithLabelValues("resend").Inc()
	m.notifier.SendVerificationCode(ctx, p.Email, p.Name, code, m.otp.Policy().CodeTTL)
	log.Info("code resent", logger.Email(emailAddr), logger.Int("window_count", p.OTP.RequestCount))
	return nil
}

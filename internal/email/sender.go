// Package email delivers the verification-code and password-change
// messages. Delivery is always best-effort: callers hand a message to the
// Notifier and never observe the SMTP outcome.
package email

import (
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// Sender delivers one message as multipart/alternative (text + HTML).
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// NoopSender is used when SMTP is not configured. It logs and drops.
type NoopSender struct{}

func (NoopSender) Send(to, subject, _, _ string) error {
	logger.L().Warn("smtp not configured, email dropped",
		logger.Component("email"),
		logger.String("to", to),
		logger.String("subject", subject),
	)
	return nil
}

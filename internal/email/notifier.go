package email

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/lmsauth/internal/metrics"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// Notifier is the fire-and-forget surface used by the session service.
// Implementations must return immediately and never report delivery errors.
type Notifier interface {
	SendVerificationCode(ctx context.Context, to, name, code string, ttl time.Duration)
	SendPasswordChanged(ctx context.Context, to, name string)
}

// AsyncNotifier renders messages and delivers each one on its own goroutine.
type AsyncNotifier struct {
	sender  Sender
	product string
	timeout time.Duration

	wg sync.WaitGroup
}

func NewAsyncNotifier(sender Sender, product string, timeout time.Duration) *AsyncNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if product == "" {
		product = "LMS"
	}
	return &AsyncNotifier{sender: sender, product: product, timeout: timeout}
}

func (n *AsyncNotifier) SendVerificationCode(ctx context.Context, to, name, code string, ttl time.Duration) {
	html, text, err := render(codeHTML, codeText, codeVars{
		Name: name, Code: code, TTLMinutes: int(ttl.Minutes()), Product: n.product,
	})
	n.dispatch(ctx, "verification_code", to, "Your "+n.product+" verification code", html, text, err)
}

func (n *AsyncNotifier) SendPasswordChanged(ctx context.Context, to, name string) {
	html, text, err := render(changedHTML, changedText, changedVars{Name: name, Product: n.product})
	n.dispatch(ctx, "password_changed", to, "Your "+n.product+" password was changed", html, text, err)
}

// Wait blocks until in-flight deliveries finish. Called on shutdown.
func (n *AsyncNotifier) Wait() { n.wg.Wait() }

func (n *AsyncNotifier) dispatch(ctx context.Context, kind, to, subject, html, text string, renderErr error) {
	// The request context is about to be cancelled; keep only its logger.
	log := logger.From(ctx).With(logger.Component("notifier"), logger.String("kind", kind))
	if renderErr != nil {
		metrics.EmailNotifications.WithLabelValues(kind, "render_error").Inc()
		log.Error("email render failed", logger.Err(renderErr))
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		done := make(chan error, 1)
		go func() { done <- n.sender.Send(to, subject, html, text) }()

		select {
		case err := <-done:
			if err != nil {
				metrics.EmailNotifications.WithLabelValues(kind, "error").Inc()
				log.Warn("email delivery failed (soft)", logger.Err(err))
				return
			}
			metrics.EmailNotifications.WithLabelValues(kind, "sent").Inc()
		case <-time.After(n.timeout):
			metrics.EmailNotifications.WithLabelValues(kind, "timeout").Inc()
			log.Warn("email delivery timed out (soft)", logger.Duration("timeout", n.timeout))
		}
	}()
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) SendVerificationCode(context.Context, string, string, string, time.Duration) {}
func (NopNotifier) SendPasswordChanged(context.Context, string, string)                        {}

package email_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lmsauth/internal/email"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
	gate chan struct{}
}

func (s *recordingSender) Send(to, subject, html, text string) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to+"|"+subject+"|"+text)
	return s.err
}

func TestAsyncNotifierDeliversCode(t *testing.T) {
	rs := &recordingSender{}
	n := email.NewAsyncNotifier(rs, "LearnHub", time.Second)

	n.SendVerificationCode(context.Background(), "alice@example.com", "Alice", "123456", 10*time.Minute)
	n.Wait()

	require.Len(t, rs.sent, 1)
	require.True(t, strings.HasPrefix(rs.sent[0], "alice@example.com|Your LearnHub verification code|"))
	require.Contains(t, rs.sent[0], "123456")
	require.Contains(t, rs.sent[0], "10 minutes")
}

func TestAsyncNotifierDoesNotBlockCaller(t *testing.T) {
	rs := &recordingSender{gate: make(chan struct{})}
	n := email.NewAsyncNotifier(rs, "", time.Second)

	returned := make(chan struct{})
	go func() {
		n.SendPasswordChanged(context.Background(), "bob@example.com", "Bob")
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("SendPasswordChanged blocked on delivery")
	}
	close(rs.gate)
	n.Wait()
	require.Len(t, rs.sent, 1)
}

func TestAsyncNotifierSwallowsErrors(t *testing.T) {
	rs := &recordingSender{err: errors.New("smtp down")}
	n := email.NewAsyncNotifier(rs, "", time.Second)

	n.SendPasswordChanged(context.Background(), "bob@example.com", "Bob")
	n.Wait()
	require.Len(t, rs.sent, 1)
}

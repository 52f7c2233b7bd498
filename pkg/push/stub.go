package push

import (
	"context"
	"errors"
	"sync"
)

// StubProvider records sends instead of delivering; used in tests and
// push-disabled deployments.
type StubProvider struct {
	mu   sync.Mutex
	Fail bool
	Sent []Message
}

func (s *StubProvider) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return errors.New("stub push: delivery disabled")
	}
	s.Sent = append(s.Sent, msg)
	return nil
}

func (s *StubProvider) SentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

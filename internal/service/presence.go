package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"aacbridge/internal/models"
	"aacbridge/internal/repository"
	"aacbridge/internal/store"
)

// PresenceService owns the offline-fallback pollers, one per
// backgrounded user without a working push token. Going to background
// starts a poller; coming back to foreground runs the missed-message
// check and stops it. Alerts surface through the injected callback,
// which the router points at the websocket hub.
type PresenceService struct {
	notifications *repository.NotificationRepository
	tokens        *repository.TokenRepository
	interval      time.Duration
	threshold     time.Duration
	alert         func(userID string, latest models.Notification, unread int)

	mu      sync.Mutex
	pollers map[string]*FallbackPoller
}

func NewPresenceService(notifications *repository.NotificationRepository, tokens *repository.TokenRepository, interval, threshold time.Duration, alert func(userID string, latest models.Notification, unread int)) *PresenceService {
	return &PresenceService{
		notifications: notifications,
		tokens:        tokens,
		interval:      interval,
		threshold:     threshold,
		alert:         alert,
		pollers:       make(map[string]*FallbackPoller),
	}
}

// Background reports the user going to background. A user with an
// active push token is covered by the push channel and gets no
// poller. Returns whether polling is running for the user.
func (s *PresenceService) Background(ctx context.Context, userID string) (bool, error) {
	tok, err := s.tokens.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if err == nil && tok.Active {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pollers[userID]
	if !ok {
		p = NewFallbackPoller(s.notifications, userID, s.interval, s.threshold, func(latest models.Notification, unread int) {
			if s.alert != nil {
				s.alert(userID, latest, unread)
			}
		})
		s.pollers[userID] = p
	}
	p.Start()
	return true, nil
}

// Foreground reports the user coming back. The poller runs the
// staleness heuristic once so a missed message alerts immediately,
// then shuts down; the live feed takes over from here.
func (s *PresenceService) Foreground(ctx context.Context, userID string) error {
	s.mu.Lock()
	p, ok := s.pollers[userID]
	if ok {
		delete(s.pollers, userID)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := p.OnForeground(ctx); err != nil {
		log.Printf("[presence] foreground check for %s failed: %v", userID, err)
	}
	p.Stop()
	return nil
}

// Polling reports whether a fallback poller is running for the user.
func (s *PresenceService) Polling(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pollers[userID]
	return ok
}

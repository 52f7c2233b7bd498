package service

import (
	"context"
	"log"
	"sync"
	"time"

	"aacbridge/internal/models"
	"aacbridge/internal/repository"
)

// FallbackPoller is the delivery path of last resort for a user whose
// device cannot receive push: a cancellable ticker that checks for
// notifications newer than the last check mark and raises a local
// alert callback. Start and Stop are tied to the client going to
// background and foreground.
type FallbackPoller struct {
	notifications *repository.NotificationRepository
	userID        string
	interval      time.Duration
	threshold     time.Duration
	alert         func(latest models.Notification, unread int)

	mu        sync.Mutex
	lastCheck time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewFallbackPoller(notifications *repository.NotificationRepository, userID string, interval, threshold time.Duration, alert func(models.Notification, int)) *FallbackPoller {
	if interval == 0 {
		interval = 10 * time.Second
	}
	if threshold == 0 {
		threshold = 30 * time.Second
	}
	return &FallbackPoller{
		notifications: notifications,
		userID:        userID,
		interval:      interval,
		threshold:     threshold,
		alert:         alert,
		lastCheck:     time.Now(),
	}
}

// Start launches the polling loop. Calling Start on a running poller
// is a no-op.
func (p *FallbackPoller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (p *FallbackPoller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
}

func (p *FallbackPoller) run(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.CheckNow(ctx); err != nil {
				log.Printf("[poller] check for %s failed: %v", p.userID, err)
			}
		}
	}
}

// OnForeground runs the missed-message heuristic: if the last check is
// staler than the threshold, re-check immediately so an alert fires as
// the client comes back.
func (p *FallbackPoller) OnForeground(ctx context.Context) error {
	p.mu.Lock()
	stale := time.Since(p.lastCheck) > p.threshold
	p.mu.Unlock()
	if !stale {
		return nil
	}
	return p.CheckNow(ctx)
}

// CheckNow fetches the user's feed and fires the alert callback when
// unread notifications newer than the last check mark exist. The mark
// advances whether or not anything was found.
func (p *FallbackPoller) CheckNow(ctx context.Context) error {
	p.mu.Lock()
	since := p.lastCheck
	p.mu.Unlock()

	list, err := p.notifications.ListForUser(ctx, p.userID)
	if err != nil {
		return err
	}
	var latest *models.Notification
	for i := range list {
		n := &list[i]
		if n.Read || !n.CreatedAt.After(since) {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	if latest != nil && p.alert != nil {
		p.alert(*latest, UnreadCount(list))
	}

	p.mu.Lock()
	p.lastCheck = time.Now()
	p.mu.Unlock()
	return nil
}

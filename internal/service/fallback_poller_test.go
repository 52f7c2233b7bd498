package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
)

type alertRecorder struct {
	mu     sync.Mutex
	fired  int
	latest models.Notification
	unread int
}

func (a *alertRecorder) record(latest models.Notification, unread int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fired++
	a.latest = latest
	a.unread = unread
}

func (a *alertRecorder) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fired
}

func seedNotification(t *testing.T, env *testEnv, toID, message string, read bool) *models.Notification {
	t.Helper()
	n := &models.Notification{
		FromID:  "c1",
		ToID:    toID,
		Message: message,
		Type:    domain.NotifTypeButtonPressed,
		Read:    read,
	}
	if err := env.notifications.Create(context.Background(), n); err != nil {
		t.Fatalf("seed notification failed: %v", err)
	}
	return n
}

func TestCheckNowAlertsOnNewUnread(t *testing.T) {
	env := setupTestEnv(t)
	rec := &alertRecorder{}
	poller := NewFallbackPoller(env.notifications, "p1", time.Minute, time.Minute, rec.record)
	ctx := context.Background()

	// Nothing new yet.
	if err := poller.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow failed: %v", err)
	}
	if rec.count() != 0 {
		t.Fatalf("alert fired with empty feed")
	}

	time.Sleep(5 * time.Millisecond)
	seedNotification(t, env, "p1", "older", false)
	time.Sleep(5 * time.Millisecond)
	latest := seedNotification(t, env, "p1", "newest", false)
	seedNotification(t, env, "p1", "already seen", true)

	if err := poller.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow failed: %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("expected one alert, got %d", rec.count())
	}
	if rec.latest.ID != latest.ID {
		t.Errorf("alert must carry the newest unread, got %q", rec.latest.Message)
	}
	if rec.unread != 2 {
		t.Errorf("expected unread=2, got %d", rec.unread)
	}

	// The mark advanced; re-checking the same feed stays quiet.
	if err := poller.CheckNow(ctx); err != nil {
		t.Fatalf("CheckNow failed: %v", err)
	}
	if rec.count() != 1 {
		t.Errorf("alert re-fired for already seen records")
	}
}

func TestCheckNowIgnoresReadRecords(t *testing.T) {
	env := setupTestEnv(t)
	rec := &alertRecorder{}
	poller := NewFallbackPoller(env.notifications, "p1", time.Minute, time.Minute, rec.record)

	time.Sleep(5 * time.Millisecond)
	seedNotification(t, env, "p1", "seen", true)

	if err := poller.CheckNow(context.Background()); err != nil {
		t.Fatalf("CheckNow failed: %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("read records must not raise alerts")
	}
}

func TestOnForegroundHonorsThreshold(t *testing.T) {
	env := setupTestEnv(t)
	rec := &alertRecorder{}

	// Fresh mark, wide threshold: nothing to do.
	calm := NewFallbackPoller(env.notifications, "p1", time.Minute, time.Hour, rec.record)
	time.Sleep(5 * time.Millisecond)
	seedNotification(t, env, "p1", "missed", false)
	if err := calm.OnForeground(context.Background()); err != nil {
		t.Fatalf("OnForeground failed: %v", err)
	}
	if rec.count() != 0 {
		t.Fatalf("fresh mark must skip the check")
	}

	// Stale mark: the missed record surfaces immediately.
	stale := NewFallbackPoller(env.notifications, "p1", time.Minute, time.Millisecond, rec.record)
	time.Sleep(5 * time.Millisecond)
	seedNotification(t, env, "p1", "missed again", false)
	if err := stale.OnForeground(context.Background()); err != nil {
		t.Fatalf("OnForeground failed: %v", err)
	}
	if rec.count() != 1 {
		t.Errorf("stale mark must trigger an immediate check")
	}
}

func TestPollerStartStop(t *testing.T) {
	env := setupTestEnv(t)
	rec := &alertRecorder{}
	poller := NewFallbackPoller(env.notifications, "p1", 20*time.Millisecond, time.Minute, rec.record)

	poller.Start()
	poller.Start() // second Start is a no-op

	time.Sleep(5 * time.Millisecond)
	seedNotification(t, env, "p1", "while polling", false)

	waitFor(t, func() bool { return rec.count() >= 1 })
	poller.Stop()
	poller.Stop() // second Stop is a no-op

	fired := rec.count()
	seedNotification(t, env, "p1", "after stop", false)
	time.Sleep(60 * time.Millisecond)
	if rec.count() != fired {
		t.Errorf("poller fired after Stop")
	}
}

package service

import (
	"context"
	"encoding/json"
	"testing"

	"aacbridge/internal/domain"
	"aacbridge/pkg/push"
)

func newProcessor(env *testEnv, provider push.Provider) (*TriggerProcessor, *PushService) {
	pushSvc := NewPushService(env.tokens, env.history, provider)
	return NewTriggerProcessor(env.triggers, pushSvc, env.history), pushSvc
}

func TestProcessPendingDeliversAndMarks(t *testing.T) {
	env := setupTestEnv(t)
	stub := &push.StubProvider{}
	proc, pushSvc := newProcessor(env, stub)
	notifSvc := newNotifService(env)
	ctx := context.Background()

	pushSvc.RegisterToken(ctx, "c1", "tok-c1", "ios", "")
	id, err := notifSvc.NotifyUser(ctx, "p1", "c1", domain.NotifTypeChildMessage, "Hello", "Dinner", map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatalf("NotifyUser failed: %v", err)
	}

	n, err := proc.ProcessPending(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 processed, got %d err %v", n, err)
	}
	if stub.SentCount() != 1 {
		t.Fatalf("expected 1 push, got %d", stub.SentCount())
	}

	trig, _ := env.triggers.Get(ctx, id)
	if !trig.Processed || !trig.Success || trig.ProcessedAt == nil {
		t.Errorf("trigger not marked delivered: %+v", trig)
	}

	hist, _ := env.history.ListForUser(ctx, "c1")
	var trigRows, sentRows int
	for _, h := range hist {
		if h.Type == "trigger" {
			trigRows++
			if h.Status != domain.DeliveryStatusSent {
				t.Errorf("trigger audit row not sent: %+v", h)
			}
			var payload map[string]interface{}
			json.Unmarshal([]byte(h.Payload), &payload)
			if payload["triggerId"] != id {
				t.Errorf("audit row points at wrong trigger: %v", payload)
			}
		}
		if h.Status == domain.DeliveryStatusSent {
			sentRows++
		}
	}
	if trigRows != 1 {
		t.Errorf("expected one trigger audit row, got %d", trigRows)
	}
	if sentRows == 0 {
		t.Errorf("expected sent audit rows, got none")
	}
}

func TestProcessPendingWithoutTokenMarksFailure(t *testing.T) {
	env := setupTestEnv(t)
	stub := &push.StubProvider{}
	proc, _ := newProcessor(env, stub)
	notifSvc := newNotifService(env)
	ctx := context.Background()

	id, _ := notifSvc.NotifyUser(ctx, "p1", "c1", domain.NotifTypeChildStatus, "Status", "offline", nil)

	n, err := proc.ProcessPending(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 processed, got %d err %v", n, err)
	}
	if stub.SentCount() != 0 {
		t.Errorf("no token: provider must not be called")
	}

	trig, _ := env.triggers.Get(ctx, id)
	if !trig.Processed || trig.Success {
		t.Errorf("expected processed=true success=false, got %+v", trig)
	}

	hist, _ := env.history.ListForUser(ctx, "c1")
	if len(hist) != 1 || hist[0].Type != "trigger" || hist[0].Status != domain.DeliveryStatusFailed {
		t.Errorf("expected exactly one failed trigger audit row, got %+v", hist)
	}
}

func TestProcessedTriggersAreTerminal(t *testing.T) {
	env := setupTestEnv(t)
	stub := &push.StubProvider{}
	proc, pushSvc := newProcessor(env, stub)
	notifSvc := newNotifService(env)
	ctx := context.Background()

	pushSvc.RegisterToken(ctx, "c1", "tok-c1", "ios", "")
	id, _ := notifSvc.NotifyUser(ctx, "p1", "c1", domain.NotifTypeChildMessage, "Hello", "x", nil)

	if _, err := proc.ProcessPending(ctx); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	first, _ := env.triggers.Get(ctx, id)

	n, err := proc.ProcessPending(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second pass must find nothing, got %d err %v", n, err)
	}
	if stub.SentCount() != 1 {
		t.Errorf("processed trigger pushed again: %d sends", stub.SentCount())
	}
	second, _ := env.triggers.Get(ctx, id)
	if second.Success != first.Success || !second.ProcessedAt.Equal(*first.ProcessedAt) {
		t.Errorf("terminal trigger mutated: %+v vs %+v", first, second)
	}
}

func TestStartDrainsOnChange(t *testing.T) {
	env := setupTestEnv(t)
	stub := &push.StubProvider{}
	proc, pushSvc := newProcessor(env, stub)
	notifSvc := newNotifService(env)
	ctx := context.Background()

	pushSvc.RegisterToken(ctx, "c1", "tok-c1", "ios", "")

	proc.Start()
	defer proc.Close()

	if _, err := notifSvc.NotifyUser(ctx, "p1", "c1", domain.NotifTypeChildMessage, "Hi", "there", nil); err != nil {
		t.Fatalf("NotifyUser failed: %v", err)
	}

	waitFor(t, func() bool {
		pending, err := env.triggers.ListUnprocessed(ctx)
		return err == nil && len(pending) == 0
	})
	if stub.SentCount() != 1 {
		t.Errorf("expected 1 push from worker, got %d", stub.SentCount())
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aacbridge/internal/domain"
	"aacbridge/pkg/push"
)

func TestRegisterTokenLastWriteWins(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPushService(env.tokens, env.history, &push.StubProvider{})
	ctx := context.Background()

	if err := svc.RegisterToken(ctx, "u1", "tok-old", "ios", "dev-1"); err != nil {
		t.Fatalf("first RegisterToken failed: %v", err)
	}
	if err := svc.RegisterToken(ctx, "u1", "tok-new", "android", "dev-2"); err != nil {
		t.Fatalf("second RegisterToken failed: %v", err)
	}

	tok, err := env.tokens.GetByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if tok.Token != "tok-new" || tok.Platform != "android" || tok.DeviceID != "dev-2" {
		t.Errorf("expected last registration to win, got %+v", tok)
	}
	if !tok.Active {
		t.Errorf("re-registered token must be active")
	}
}

func TestRegisterTokenRejectsEmpty(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPushService(env.tokens, env.history, &push.StubProvider{})

	if err := svc.RegisterToken(context.Background(), "u1", "", "ios", ""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

func TestDeactivateTokenOnLogout(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPushService(env.tokens, env.history, &push.StubProvider{})
	ctx := context.Background()

	svc.RegisterToken(ctx, "u1", "tok", "ios", "")
	if err := svc.DeactivateToken(ctx, "u1"); err != nil {
		t.Fatalf("DeactivateToken failed: %v", err)
	}
	tok, err := env.tokens.GetByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if tok.Active {
		t.Errorf("token still active after logout")
	}
	// Re-registering on the next login reactivates.
	svc.RegisterToken(ctx, "u1", "tok2", "ios", "")
	tok, _ = env.tokens.GetByUser(ctx, "u1")
	if !tok.Active || tok.Token != "tok2" {
		t.Errorf("re-registration did not reactivate: %+v", tok)
	}
}

func TestSendWithoutTokenIsDistinctError(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPushService(env.tokens, env.history, &push.StubProvider{})
	ctx := context.Background()

	delivered, err := svc.Send(ctx, "nobody", domain.NotifTypeTest, "t", "b", nil)
	if !errors.Is(err, ErrNoPushToken) || delivered {
		t.Fatalf("expected ErrNoPushToken, got delivered=%v err=%v", delivered, err)
	}
	// No attempt means no audit row.
	hist, _ := svc.History(ctx, "nobody")
	if len(hist) != 0 {
		t.Errorf("expected empty history, got %d rows", len(hist))
	}
}

func TestSendSuccessAuditsSent(t *testing.T) {
	env := setupTestEnv(t)
	stub := &push.StubProvider{}
	svc := NewPushService(env.tokens, env.history, stub)
	ctx := context.Background()

	svc.RegisterToken(ctx, "u1", "ExponentPushToken[abc]", "ios", "dev-1")

	delivered, err := svc.Send(ctx, "u1", domain.NotifTypeChildMessage, "Hello", "Dinner", map[string]interface{}{"k": "v"})
	if err != nil || !delivered {
		t.Fatalf("expected delivery, got delivered=%v err=%v", delivered, err)
	}
	if stub.SentCount() != 1 {
		t.Fatalf("expected 1 provider send, got %d", stub.SentCount())
	}
	msg := stub.Sent[0]
	if msg.Token != "ExponentPushToken[abc]" || msg.Badge != 1 || msg.Priority != "high" || msg.Sound != "default" || msg.ChannelID != "default" {
		t.Errorf("message shape wrong: %+v", msg)
	}

	hist, _ := svc.History(ctx, "u1")
	if len(hist) != 1 || hist[0].Status != domain.DeliveryStatusSent {
		t.Fatalf("expected one sent audit row, got %+v", hist)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(hist[0].Payload), &payload); err != nil {
		t.Fatalf("audit payload not JSON: %v", err)
	}
	if payload["title"] != "Hello" || payload["body"] != "Dinner" {
		t.Errorf("audit payload wrong: %v", payload)
	}
}

func TestSendFailureAuditsFailedWithoutError(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPushService(env.tokens, env.history, &push.StubProvider{Fail: true})
	ctx := context.Background()

	svc.RegisterToken(ctx, "u1", "tok", "ios", "")

	delivered, err := svc.Send(ctx, "u1", domain.NotifTypeTest, "t", "b", nil)
	if err != nil {
		t.Fatalf("relay failure must not surface as error, got %v", err)
	}
	if delivered {
		t.Fatalf("expected delivered=false")
	}
	hist, _ := svc.History(ctx, "u1")
	if len(hist) != 1 || hist[0].Status != domain.DeliveryStatusFailed {
		t.Errorf("expected exactly one failed audit row, got %+v", hist)
	}
}

func TestSendThroughExpoRelay(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	var got struct {
		To        string                 `json:"to"`
		Title     string                 `json:"title"`
		Body      string                 `json:"body"`
		Data      map[string]interface{} `json:"data"`
		Badge     int                    `json:"badge"`
		Priority  string                 `json:"priority"`
		Sound     string                 `json:"sound"`
		ChannelID string                 `json:"channelId"`
	}
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad relay request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer relay.Close()

	svc := NewPushService(env.tokens, env.history, push.NewExpoProvider(relay.URL, 5*time.Second))
	svc.RegisterToken(ctx, "u1", "ExponentPushToken[xyz]", "android", "")

	delivered, err := svc.Send(ctx, "u1", domain.NotifTypeButtonPressed, "Button", "I want water", map[string]interface{}{"from": "c1"})
	if err != nil || !delivered {
		t.Fatalf("expected delivery through relay, got delivered=%v err=%v", delivered, err)
	}
	if got.To != "ExponentPushToken[xyz]" || got.Title != "Button" || got.Body != "I want water" {
		t.Errorf("relay payload wrong: %+v", got)
	}
	if got.Badge != 1 || got.Priority != "high" || got.Sound != "default" || got.ChannelID != "default" {
		t.Errorf("relay defaults wrong: %+v", got)
	}
	if got.Data["from"] != "c1" {
		t.Errorf("relay data wrong: %v", got.Data)
	}
}

func TestSendThroughUnreachableRelay(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	relay.Close()

	svc := NewPushService(env.tokens, env.history, push.NewExpoProvider(relay.URL, time.Second))
	svc.RegisterToken(ctx, "u1", "tok", "ios", "")

	delivered, err := svc.Send(ctx, "u1", domain.NotifTypeTest, "t", "b", nil)
	if err != nil || delivered {
		t.Fatalf("expected delivered=false without error, got delivered=%v err=%v", delivered, err)
	}
	hist, _ := svc.History(ctx, "u1")
	if len(hist) != 1 || hist[0].Status != domain.DeliveryStatusFailed {
		t.Errorf("expected exactly one failed audit row, got %+v", hist)
	}
}

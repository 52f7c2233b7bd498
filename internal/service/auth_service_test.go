package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aacbridge/config"
	"aacbridge/internal/auth"
	"aacbridge/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "aacbridge",
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)
	cfg := testConfig()
	svc := NewAuthService(cfg, env.users)
	ctx := context.Background()

	u, access, refresh, err := svc.Register(ctx, "pat@example.com", "hunter22", "Pat", domain.RoleParent, "+15550001")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.ID == "" || access == "" || refresh == "" {
		t.Fatalf("expected user and token pair, got %+v / %q / %q", u, access, refresh)
	}
	if u.PasswordHash == "hunter22" {
		t.Errorf("password stored in the clear")
	}

	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	if err != nil {
		t.Fatalf("issued access token does not parse: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != domain.RoleParent {
		t.Errorf("claims wrong: %+v", claims)
	}

	logged, _, _, err := svc.Login(ctx, "pat@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if logged.ID != u.ID {
		t.Errorf("login returned a different user")
	}
}

func TestLoginIssuesValidTokenPair(t *testing.T) {
	env := setupTestEnv(t)
	cfg := testConfig()
	svc := NewAuthService(cfg, env.users)
	ctx := context.Background()

	u, _, _, err := svc.Register(ctx, "pat@example.com", "hunter22", "Pat", domain.RoleParent, "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, access, refresh, err := svc.Login(ctx, "pat@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	if err != nil {
		t.Fatalf("login access token does not parse: %v", err)
	}
	if claims.UserID != u.ID {
		t.Errorf("access token issued for %q, want %q", claims.UserID, u.ID)
	}
	refreshUserID, err := auth.ParseRefreshToken(&cfg.JWT, refresh)
	if err != nil {
		t.Fatalf("login refresh token does not parse: %v", err)
	}
	if refreshUserID != u.ID {
		t.Errorf("refresh token issued for %q, want %q", refreshUserID, u.ID)
	}
}

func TestRegisterRejectsDuplicateEmailAndBadRole(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAuthService(testConfig(), env.users)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "pat@example.com", "pw", "Pat", "GUARDIAN", ""); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	if _, _, _, err := svc.Register(ctx, "pat@example.com", "pw", "Pat", domain.RoleParent, ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, _, err := svc.Register(ctx, "pat@example.com", "pw2", "Patty", domain.RoleChild, ""); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAuthService(testConfig(), env.users)
	ctx := context.Background()

	svc.Register(ctx, "pat@example.com", "correct", "Pat", domain.RoleParent, "")

	if _, _, _, err := svc.Login(ctx, "pat@example.com", "wrong"); !errors.Is(err, ErrInvalidCreds) {
		t.Errorf("wrong password: expected ErrInvalidCreds, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCreds) {
		t.Errorf("unknown email: expected ErrInvalidCreds, got %v", err)
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	env := setupTestEnv(t)
	cfg := testConfig()
	svc := NewAuthService(cfg, env.users)
	ctx := context.Background()

	u, _, refresh, err := svc.Register(ctx, "sam@example.com", "pw", "Sam", domain.RoleChild, "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	access, err := svc.Refresh(ctx, refresh)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	if err != nil || claims.UserID != u.ID {
		t.Errorf("refreshed token wrong: %v %+v", err, claims)
	}

	if _, err := svc.Refresh(ctx, "not-a-token"); err == nil {
		t.Errorf("garbage refresh token must be rejected")
	}
}

func TestGetUserProfile(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewAuthService(testConfig(), env.users)
	ctx := context.Background()

	u, _, _, _ := svc.Register(ctx, "sam@example.com", "pw", "Sam", domain.RoleChild, "+15550002")

	p, err := svc.GetUserProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	if p.UID != u.ID || p.DisplayName != "Sam" || p.Role != domain.RoleChild || p.PhoneNumber != "+15550002" {
		t.Errorf("profile wrong: %+v", p)
	}

	if _, err := svc.GetUserProfile(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

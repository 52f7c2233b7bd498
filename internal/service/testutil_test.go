package service

import (
	"fmt"
	"testing"
	"time"

	"aacbridge/internal/models"
	"aacbridge/internal/repository"
	"aacbridge/internal/store"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full repository layer over an in-memory database,
// one private database per test.
type testEnv struct {
	store         *store.Store
	users         *repository.UserRepository
	invites       *repository.InviteRepository
	connections   *repository.ConnectionRepository
	notifications *repository.NotificationRepository
	triggers      *repository.TriggerRepository
	history       *repository.HistoryRepository
	tokens        *repository.TokenRepository
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.InviteCode{},
		&models.Connection{},
		&models.Notification{},
		&models.NotificationTrigger{},
		&models.NotificationHistory{},
		&models.PushToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	s := store.New(db)
	return &testEnv{
		store:         s,
		users:         repository.NewUserRepository(s),
		invites:       repository.NewInviteRepository(s),
		connections:   repository.NewConnectionRepository(s),
		notifications: repository.NewNotificationRepository(s),
		triggers:      repository.NewTriggerRepository(s),
		history:       repository.NewHistoryRepository(s),
		tokens:        repository.NewTokenRepository(s),
	}
}

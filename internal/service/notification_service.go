package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/repository"
)

var (
	ErrEmptyMessage        = errors.New("message is required")
	ErrNoParentConnection  = errors.New("no active parent connection")
	ErrEmptyNotificationID = errors.New("notification id is required")
)

// FanoutResult reports a per-connection fan-out: a button press may
// reach some parents and not others.
type FanoutResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	IDs    []string `json:"ids"`
}

// NotificationService is the direct record channel plus the trigger
// outbox entry point. The live feed it exposes always recomputes the
// unread count from the store, never by decrementing a cached value.
type NotificationService struct {
	notifications *repository.NotificationRepository
	connections   *repository.ConnectionRepository
	triggers      *repository.TriggerRepository
}

func NewNotificationService(notifications *repository.NotificationRepository, connections *repository.ConnectionRepository, triggers *repository.TriggerRepository) *NotificationService {
	return &NotificationService{notifications: notifications, connections: connections, triggers: triggers}
}

// SendButtonPress writes one unread notification record per active
// parent connection of the child. Partial failure is reported, not
// rolled back.
func (s *NotificationService) SendButtonPress(ctx context.Context, child Identity, message string) (*FanoutResult, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	conns, err := s.connections.ListByChild(ctx, child.ID)
	if err != nil {
		return nil, err
	}
	active := activeOnly(conns)
	if len(active) == 0 {
		return nil, ErrNoParentConnection
	}
	result := &FanoutResult{}
	for _, conn := range active {
		n := &models.Notification{
			FromID:      child.ID,
			FromContact: child.Contact,
			FromName:    child.Name,
			ToID:        conn.ParentID,
			ToContact:   conn.ParentContact,
			ToName:      conn.ParentName,
			Message:     message,
			Type:        domain.NotifTypeButtonPressed,
			Read:        false,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			log.Printf("[notifications] button press to %s failed: %v", conn.ParentID, err)
			result.Failed++
			continue
		}
		result.Sent++
		result.IDs = append(result.IDs, n.ID)
	}
	return result, nil
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.notifications.ListForUser(ctx, userID)
}

// MarkRead flips a record's read flag. The flag is monotonic; marking
// an already-read record is a no-op that still succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	if notificationID == "" {
		return ErrEmptyNotificationID
	}
	return s.notifications.MarkRead(ctx, notificationID)
}

// UnreadCount recomputes the badge value from a snapshot.
func UnreadCount(list []models.Notification) int {
	n := 0
	for i := range list {
		if !list[i].Read {
			n++
		}
	}
	return n
}

// Subscribe delivers the recipient's full current feed, with the
// recomputed unread count, once immediately and after every change to
// the notifications collection. The returned func cancels the
// subscription; the owning consumer must call it on teardown.
func (s *NotificationService) Subscribe(userID string, fn func(list []models.Notification, unread int)) func() {
	return s.notifications.Watch(func() {
		list, err := s.notifications.ListForUser(context.Background(), userID)
		if err != nil {
			log.Printf("[notifications] live query for %s failed: %v", userID, err)
			return
		}
		fn(list, UnreadCount(list))
	})
}

// NotifyUser enqueues a trigger for the target user; the trigger
// processor picks it up and attempts push delivery. Returns the
// trigger ID.
func (s *NotificationService) NotifyUser(ctx context.Context, fromUserID, targetUserID, notifType, title, body string, data map[string]interface{}) (string, error) {
	var payload string
	if data != nil {
		b, _ := json.Marshal(data)
		payload = string(b)
	}
	return s.triggers.Create(ctx, &models.NotificationTrigger{
		TargetUserID: targetUserID,
		FromUserID:   fromUserID,
		Type:         notifType,
		Title:        title,
		Body:         body,
		Data:         payload,
		Processed:    false,
	})
}

// PendingTriggers lists the caller's not-yet-processed triggers, for
// the client's catch-up view. The processed filter runs here; the
// store only queries one field.
func (s *NotificationService) PendingTriggers(ctx context.Context, userID string) ([]models.NotificationTrigger, error) {
	list, err := s.triggers.ListForTarget(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending := make([]models.NotificationTrigger, 0, len(list))
	for _, t := range list {
		if !t.Processed {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// Broadcast enqueues one trigger per target and returns how many were
// created.
func (s *NotificationService) Broadcast(ctx context.Context, fromUserID string, targetUserIDs []string, title, body string, data map[string]interface{}) int {
	created := 0
	for _, target := range targetUserIDs {
		if _, err := s.NotifyUser(ctx, fromUserID, target, domain.NotifTypeBroadcast, title, body, data); err != nil {
			log.Printf("[notifications] broadcast trigger for %s failed: %v", target, err)
			continue
		}
		created++
	}
	return created
}

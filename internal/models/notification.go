package models

import (
	"encoding/json"
	"time"
)

// Notification is the direct-channel record a child writes for a
// parent. The read flag is monotonic: it flips false to true once and
// never reverts.
type Notification struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FromID      string    `gorm:"size:36;not null;index" json:"fromId"`
	FromContact string    `gorm:"size:255" json:"fromContact"`
	FromName    string    `gorm:"size:128" json:"fromName"`
	ToID        string    `gorm:"size:36;not null;index" json:"toId"`
	ToContact   string    `gorm:"size:255" json:"toContact"`
	ToName      string    `gorm:"size:128" json:"toName"`
	Message     string    `gorm:"type:text" json:"message"`
	Type        string    `gorm:"size:50;not null" json:"type"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"timestamp"`
	UpdatedAt   time.Time `json:"-"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) Key() string      { return n.ID }
func (n *Notification) SetKey(id string) { n.ID = id }

// NotificationTrigger is the outbox-channel record: a "notify user X"
// request consumed by the trigger processor. processed is terminal;
// once set (with success), neither field is mutated again.
type NotificationTrigger struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	TargetUserID string     `gorm:"size:36;not null;index" json:"targetUserId"`
	FromUserID   string     `gorm:"size:36" json:"fromUserId"`
	Type         string     `gorm:"size:50;not null" json:"type"`
	Title        string     `gorm:"size:255" json:"title"`
	Body         string     `gorm:"type:text" json:"body"`
	Data         string     `gorm:"type:text" json:"data"` // opaque JSON payload
	Processed    bool       `gorm:"not null;default:false;index" json:"processed"`
	ProcessedAt  *time.Time `json:"processedAt"`
	Success      bool       `gorm:"not null;default:false" json:"success"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"-"`
}

func (NotificationTrigger) TableName() string { return "notification_triggers" }

func (t *NotificationTrigger) Key() string      { return t.ID }
func (t *NotificationTrigger) SetKey(id string) { t.ID = id }

// DataMap decodes the opaque payload; a missing or malformed payload
// yields an empty map rather than an error.
func (t *NotificationTrigger) DataMap() map[string]interface{} {
	out := map[string]interface{}{}
	if t.Data != "" {
		_ = json.Unmarshal([]byte(t.Data), &out)
	}
	return out
}

// NotificationHistory is the append-only audit log of delivery
// attempts. Written on every attempt, success or failure, before the
// outcome is acted upon.
type NotificationHistory struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Payload   string    `gorm:"type:text" json:"payload"`
	Status    string    `gorm:"size:20;not null" json:"status"` // sent | failed
	CreatedAt time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"-"`
}

func (NotificationHistory) TableName() string { return "notification_history" }

func (h *NotificationHistory) Key() string      { return h.ID }
func (h *NotificationHistory) SetKey(id string) { h.ID = id }

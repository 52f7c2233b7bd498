package models

import "time"

// PushToken holds one device push token per user. Registration is a
// merge-upsert keyed by UserID, so the last writing device wins.
type PushToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	Token     string    `gorm:"size:512;not null" json:"token"` // e.g. "ExponentPushToken[xxx]" or an FCM token
	Platform  string    `gorm:"size:20" json:"platform"`        // "ios" | "android"
	DeviceID  string    `gorm:"size:128" json:"deviceId"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PushToken) TableName() string { return "push_tokens" }

func (t *PushToken) Key() string      { return t.ID }
func (t *PushToken) SetKey(id string) { t.ID = id }

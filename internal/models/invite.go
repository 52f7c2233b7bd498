package models

import "time"

// InviteCode is a time-bounded, single-use pairing code issued by a
// parent. Codes are soft-expired: used and expired rows stay in the
// table, only the used flag is ever mutated.
type InviteCode struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Code          string     `gorm:"size:6;not null;index" json:"code"`
	IssuerID      string     `gorm:"size:36;not null;index" json:"issuerId"`
	IssuerContact string     `gorm:"size:255" json:"issuerContact"`
	IssuerName    string     `gorm:"size:128" json:"issuerName"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	Used          bool       `gorm:"not null;default:false" json:"used"`
	UsedBy        string     `gorm:"size:36" json:"usedBy"`
	UsedAt        *time.Time `json:"usedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (InviteCode) TableName() string { return "invite_codes" }

func (c *InviteCode) Key() string      { return c.ID }
func (c *InviteCode) SetKey(id string) { c.ID = id }

func (c *InviteCode) Expired(now time.Time) bool { return c.ExpiresAt.Before(now) }

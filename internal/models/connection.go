package models

import "time"

// Connection is the symmetric parent-child link created on invite
// redemption. Removal is represented by deleting the row; there is no
// multi-state lifecycle beyond the status string.
type Connection struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ParentID      string    `gorm:"size:36;not null;index" json:"parentId"`
	ParentContact string    `gorm:"size:255" json:"parentContact"`
	ParentName    string    `gorm:"size:128" json:"parentName"`
	ChildID       string    `gorm:"size:36;not null;index" json:"childId"`
	ChildContact  string    `gorm:"size:255" json:"childContact"`
	ChildName     string    `gorm:"size:128" json:"childName"`
	Status        string    `gorm:"size:20;not null;default:active" json:"status"`
	ConnectedAt   time.Time `json:"connectedAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Connection) TableName() string { return "parent_child_connections" }

func (c *Connection) Key() string      { return c.ID }
func (c *Connection) SetKey(id string) { c.ID = id }

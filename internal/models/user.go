package models

import (
	"time"

	"aacbridge/internal/domain"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	DisplayName  string    `gorm:"size:128;not null" json:"displayName"`
	Role         string    `gorm:"size:20;not null;index" json:"role"` // PARENT | CHILD
	PhoneNumber  string    `gorm:"size:32" json:"phoneNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) Key() string      { return u.ID }
func (u *User) SetKey(id string) { u.ID = id }

func (u *User) IsParent() bool { return u.Role == domain.RoleParent }
func (u *User) IsChild() bool  { return u.Role == domain.RoleChild }

// Profile is the slice of a user exposed to other users (connection
// confirmations, notification sender info).
type Profile struct {
	UID         string `json:"uid"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
}

func (u *User) Profile() Profile {
	return Profile{UID: u.ID, DisplayName: u.DisplayName, Role: u.Role, PhoneNumber: u.PhoneNumber}
}

package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleContributor UserRole = "contributor"
	RoleViewer      UserRole = "viewer"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleContributor, RoleViewer:
		return true
	default:
		return false
	}
}

// CanSelfRegister reports whether a user may pick r at signup. Admins are bootstrapped only.
func (r UserRole) CanSelfRegister() bool {
	switch r {
	case RoleContributor, RoleViewer:
		return true
	case RoleAdmin:
		return false
	default:
		return false
	}
}

type User struct {
	ID       string   `json:"_id" gorm:"primaryKey;size:64" bson:"_id"`
	Name     string   `json:"name" gorm:"not null;size:100" bson:"name"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" bson:"email"`
	Password string   `json:"-" gorm:"not null" bson:"password"`
	Role     UserRole `json:"role" gorm:"not null;size:20;default:viewer" bson:"role"`

	// Current session token; a newer login replaces it.
	AccessToken *string `json:"-" gorm:"type:text" bson:"accessToken,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}


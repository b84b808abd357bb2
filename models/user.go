package models

import "time"

// User represents a user account in the system
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Authentication fields
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Membership
	TeamID *uint `gorm:"index" json:"team_id"`
	Team   *Team `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`
	IsStaff  bool `gorm:"default:false" json:"is_staff"`

	CreatedAt time.Time `json:"created_at"`
}

// InTeam reports whether the user is a member of the given team.
func (u *User) InTeam(teamID *uint) bool {
	if u == nil || u.TeamID == nil || teamID == nil {
		return false
	}
	return *u.TeamID == *teamID
}

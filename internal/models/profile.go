package model

import (
	"time"

	"crewsync.com/crewsync/internal/constants"
)

type Profile struct {
	UserID    string                   `gorm:"primaryKey;size:36" json:"user_id"`
	FirstName string                   `gorm:"not null" json:"first_name"`
	LastName  string                   `gorm:"not null" json:"last_name"`
	Email     string                   `gorm:"not null;uniqueIndex" json:"email"`
	AvatarRef string                   `json:"avatar_ref,omitempty"`
	Role      constants.Role           `gorm:"type:varchar(20);not null" json:"role"`
	Status    constants.PresenceStatus `gorm:"type:varchar(10);not null;default:offline" json:"status"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

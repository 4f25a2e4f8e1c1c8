package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken is the persisted session record backing one refresh credential.
// Records are revoked, never deleted: the revoked rows form an audit trail of
// every session the account has held.
type RefreshToken struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	UserID    string     `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Usable reports whether the record can still satisfy a rotation at the given
// instant: unrevoked and unexpired.
func (r *RefreshToken) Usable(now time.Time) bool {
	return r.RevokedAt == nil && r.ExpiresAt.After(now)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community groups posts under a shared banner. Only the creator may delete
// it or post as the community.
type Community struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	Banner      string `json:"banner"`
	Logo        string `json:"logo"`
	IsPublic    bool   `gorm:"default:true" json:"is_public"`

	CreatedByID string `gorm:"type:uuid;not null;index" json:"created_by_id"`
	CreatedBy   *User  `gorm:"foreignKey:CreatedByID" json:"-"`

	Posts []Post `gorm:"foreignKey:CommunityID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommunityRef is the projection embedded in post payloads.
type CommunityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Ref returns the public projection of the community.
func (c *Community) Ref() CommunityRef {
	return CommunityRef{ID: c.ID, Name: c.Name}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Content string `gorm:"not null" json:"content"`

	PostID string `gorm:"type:uuid;not null;index" json:"post_id"`
	Post   *Post  `gorm:"foreignKey:PostID" json:"-"`

	AuthorID string `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

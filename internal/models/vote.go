package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteType enumerates the two vote directions.
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

// Valid reports whether the value is one of the two recognised directions.
func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// Vote records one user's vote on one post. The (user, post) pair is unique;
// casting the same direction again removes the vote.
type Vote struct {
	ID   string   `gorm:"primaryKey;type:uuid" json:"id"`
	Type VoteType `gorm:"not null" json:"type"`

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_post" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	PostID string `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_post;index" json:"post_id"`
	Post   *Post  `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

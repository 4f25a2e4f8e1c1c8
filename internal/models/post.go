package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is authored either by a user (AuthorID set) or by a community
// (CommunityID set), never both. MediaURL points at the media store when the
// post carries an image or video.
type Post struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Title    string  `gorm:"not null" json:"title"`
	Content  string  `json:"content"`
	MediaURL string  `json:"media_url"`
	AuthorID *string `gorm:"type:uuid;index" json:"author_id"`
	Author   *User   `gorm:"foreignKey:AuthorID" json:"-"`

	CommunityID *string    `gorm:"type:uuid;index" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"-"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Votes    []Vote    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

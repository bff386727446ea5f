package models

import (
	"time"
)

// Post is a user-authored text entry, optionally filed under a Group and
// carrying an uploaded image.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint  `gorm:"index" json:"group_id"`
	Group    *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	ImageURL string `json:"image_url"`
	// CreatedAt is the publication timestamp; set once on create, never mutated.
	CreatedAt time.Time `json:"created_at"`
}

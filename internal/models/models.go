package models

import (
	"time"
)

// Post represents a single forum submission.
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Context   string    `json:"context"`
	ImageURL  string    `gorm:"column:image_url" json:"image_url"`
	Upvotes   int       `gorm:"not null;default:0" json:"upvotes"`
	CreatedAt time.Time `json:"created_at"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"-"` // Has-many relationship
}

// Comment is a text reply attached to exactly one Post.
type Comment struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	PostID  uint   `gorm:"not null;index" json:"post_id"`
	Content string `json:"content"`
}

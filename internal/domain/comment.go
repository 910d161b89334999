package domain

import (
	"context"
	"time"
)

type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorName string    `gorm:"size:50;not null;default:Anonymous" json:"author"`
	OwnerID    *string   `gorm:"size:36" json:"owner_id"`
	Owner      *User     `gorm:"foreignKey:OwnerID;references:UUID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
}

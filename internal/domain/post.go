package domain

import (
	"context"
	"time"
)

type Post struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Title      string  `gorm:"size:200;not null" json:"title"`
	Content    string  `gorm:"type:text;not null" json:"content"`
	AuthorName string  `gorm:"size:50;not null;default:Anonymous" json:"author"`
	OwnerID    *string `gorm:"size:36;index" json:"owner_id"`
	// 删除 User 时置空引用，帖子本身保留
	Owner      *User     `gorm:"foreignKey:OwnerID;references:UUID;constraint:OnDelete:SET NULL" json:"-"`
	Tags       []Tag     `gorm:"many2many:post_tags" json:"-"`
	IsResolved bool      `gorm:"not null;default:false" json:"is_resolved"`
	IsPrivate  bool      `gorm:"not null;default:false" json:"is_private"`
	Comments   []Comment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	// 列表查询时由子查询填充
	CommentCount int64     `gorm:"->;-:migration" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// PostFilter 列表筛选条件；字符串字段为大小写不敏感的子串匹配，Q 为四字段并集
type PostFilter struct {
	Q        string
	Title    string
	Content  string
	Author   string
	Tag      string
	Resolved *bool
}

type PostRepository interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id uint) error
	// FindByID 预加载 Tags 与 Comments，查不到返回 (nil, nil)
	FindByID(ctx context.Context, id uint) (*Post, error)
	// List 按创建时间倒序，预加载 Tags 并填充 CommentCount
	List(ctx context.Context, f PostFilter) ([]Post, error)
	ReplaceTags(ctx context.Context, p *Post, tags []Tag) error
}

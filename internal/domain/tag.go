package domain

import "context"

// Tag 在帖子创建/更新时按需 get-or-create，从不显式删除
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}

func (Tag) TableName() string { return "tags" }

type TagRepository interface {
	List(ctx context.Context) ([]Tag, error)
	GetOrCreate(ctx context.Context, name string) (*Tag, error)
}

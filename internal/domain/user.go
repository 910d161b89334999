package domain

import (
	"context"
	"time"
)

// User 由本机身份助手下发，UUID 为外部签发的稳定主键；本服务只做 upsert，从不删除
type User struct {
	UUID      string    `gorm:"primaryKey;size:36" json:"user_id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	// Exists 只用于 201/200 判定，真正的写入由 Upsert 单条原子语句完成
	Exists(ctx context.Context, uuid string) (bool, error)
	Upsert(ctx context.Context, u *User) error
	FindByUUID(ctx context.Context, uuid string) (*User, error)
}

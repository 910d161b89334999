package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-support-board/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Exists(ctx context.Context, uuid string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("uuid = ?", uuid).Count(&n).Error
	return n > 0, err
}

// Upsert 单条冲突语句：不存在则插入，存在则无条件覆盖显示名与管理员位。
// 并发对同一 uuid 对账时竞争双方都能成功，失败方落在 update 分支上。
func (r *UserRepo) Upsert(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "is_admin", "updated_at"}),
	}).Create(u).Error
}

func (r *UserRepo) FindByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "uuid = ?", uuid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

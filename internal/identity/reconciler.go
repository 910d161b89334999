// Package identity 把本机身份助手下发的 payload 对账到本地 users 表。
// 身份助手是这两个字段（显示名/管理员位）的唯一事实来源，每次对账无条件覆盖。
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"go-support-board/internal/domain"
	"go-support-board/internal/sanitize"
)

// ErrBadIdentifier 外部标识不是合法 UUID；硬失败，不产生任何写入
var ErrBadIdentifier = errors.New("identifier is not a valid uuid")

// Payload 身份助手下发的原始记录
type Payload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type Reconciler struct {
	users domain.UserRepository
}

func NewReconciler(users domain.UserRepository) *Reconciler {
	return &Reconciler{users: users}
}

// Reconcile 按外部标识 upsert 用户并返回是否新建。
// created 只决定 201/200，存在性探测与原子 upsert 之间的并发竞争最多让
// 竞争失败方把 201 报成 200，行本身始终由单条冲突语句保证唯一。
func (r *Reconciler) Reconcile(ctx context.Context, p Payload) (*domain.User, bool, error) {
	id, err := uuid.Parse(strings.TrimSpace(p.UserID))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %q", ErrBadIdentifier, p.UserID)
	}
	name, err := sanitize.Text(p.Username, sanitize.MaxAuthorLen, "username", false)
	if err != nil {
		return nil, false, err
	}

	exists, err := r.users.Exists(ctx, id.String())
	if err != nil {
		return nil, false, err
	}
	u := &domain.User{UUID: id.String(), Username: name, IsAdmin: p.IsAdmin}
	if err := r.users.Upsert(ctx, u); err != nil {
		return nil, false, err
	}
	// 回读以拿到存储层时间戳（竞争时也能观察到胜者的行）
	stored, err := r.users.FindByUUID(ctx, id.String())
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return u, !exists, nil
	}
	return stored, !exists, nil
}

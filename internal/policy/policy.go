// Package policy 回答“主体 S 能否操作帖子 P”。纯函数，不做任何 I/O。
package policy

import "go-support-board/internal/domain"

// RedactedTitle 列表中无权限帖子的占位标题
const RedactedTitle = "This post is private."

// CanAccess 统一门禁：详情、修改、删除、评论四个操作都走这一个判定。
//
//	公开帖       -> 任何人（含匿名）
//	私密帖, 匿名  -> 拒绝
//	私密帖, 管理员 -> 放行
//	私密帖, 其他  -> 仅 owner 本人；无 owner 的私密帖只有管理员可达
func CanAccess(post *domain.Post, sub *domain.Subject) bool {
	if !post.IsPrivate {
		return true
	}
	if sub == nil {
		return false
	}
	if sub.IsAdmin {
		return true
	}
	return post.OwnerID != nil && *post.OwnerID == sub.UID
}

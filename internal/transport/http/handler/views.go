package handler

import (
	"time"

	"go-support-board/internal/domain"
	"go-support-board/internal/policy"
)

type postView struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	OwnerID      *string   `json:"owner_id"`
	Tags         []string  `json:"tags"`
	IsResolved   bool      `json:"is_resolved"`
	IsPrivate    bool      `json:"is_private"`
	CommentCount int64     `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type commentView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	OwnerID   *string   `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type postDetailView struct {
	postView
	Comments []commentView `json:"comments"`
}

// newPostView 按权限投影：无权限时标题换占位符、正文与标签清空，
// 但保留私密/已解决标记与评论数，让列表能暴露帖子的存在而不泄露内容
func newPostView(p *domain.Post, sub *domain.Subject) postView {
	allowed := policy.CanAccess(p, sub)
	v := postView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Author:       p.AuthorName,
		OwnerID:      p.OwnerID,
		Tags:         tagNames(p.Tags),
		IsResolved:   p.IsResolved,
		IsPrivate:    p.IsPrivate,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if !allowed {
		v.Title = policy.RedactedTitle
		v.Content = ""
		v.Tags = []string{}
	}
	return v
}

func newPostDetailView(p *domain.Post, sub *domain.Subject) postDetailView {
	comments := make([]commentView, 0, len(p.Comments))
	for i := range p.Comments {
		comments = append(comments, newCommentView(&p.Comments[i]))
	}
	return postDetailView{postView: newPostView(p, sub), Comments: comments}
}

func newCommentView(cm *domain.Comment) commentView {
	return commentView{
		ID:        cm.ID,
		Content:   cm.Content,
		Author:    cm.AuthorName,
		OwnerID:   cm.OwnerID,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
}

func tagNames(tags []domain.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

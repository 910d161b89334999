package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-support-board/internal/domain"
)

type PostRepo struct{ db *gorm.DB }

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostRepo) Update(ctx context.Context, p *domain.Post) error {
	// Save 全量写，标签关联另走 ReplaceTags
	return r.db.WithContext(ctx).Omit("Tags", "Comments").Save(p).Error
}

func (r *PostRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// sqlite 默认不开外键级联，这里显式清子表和关联表
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, id).Error
	})
}

func (r *PostRepo) FindByID(ctx context.Context, id uint) (*domain.Post, error) {
	var p domain.Post
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc") }).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CommentCount = int64(len(p.Comments))
	return &p, nil
}

func like(s string) string { return "%" + strings.ToLower(s) + "%" }

// tagMatch 用 EXISTS 避免 join 去重
const tagMatch = `EXISTS (
	SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
	WHERE pt.post_id = posts.id AND LOWER(t.name) LIKE ?)`

func (r *PostRepo) List(ctx context.Context, f domain.PostFilter) ([]domain.Post, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Post{}).
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")

	// 通合搜索：标题/内容/作者/标签名四字段并集
	if f.Q != "" {
		tx = tx.Where(
			"LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(posts.author_name) LIKE ? OR "+tagMatch,
			like(f.Q), like(f.Q), like(f.Q), like(f.Q),
		)
	}
	if f.Title != "" {
		tx = tx.Where("LOWER(posts.title) LIKE ?", like(f.Title))
	}
	if f.Content != "" {
		tx = tx.Where("LOWER(posts.content) LIKE ?", like(f.Content))
	}
	if f.Author != "" {
		tx = tx.Where("LOWER(posts.author_name) LIKE ?", like(f.Author))
	}
	if f.Tag != "" {
		tx = tx.Where(tagMatch, like(f.Tag))
	}
	if f.Resolved != nil {
		tx = tx.Where("posts.is_resolved = ?", *f.Resolved)
	}

	var posts []domain.Post
	err := tx.Preload("Tags").Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error
	return posts, err
}

func (r *PostRepo) ReplaceTags(ctx context.Context, p *domain.Post, tags []domain.Tag) error {
	if err := r.db.WithContext(ctx).Model(p).Association("Tags").Replace(tags); err != nil {
		return err
	}
	p.Tags = tags
	return nil
}

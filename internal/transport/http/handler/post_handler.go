package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-support-board/internal/core/cache"
	"go-support-board/internal/core/session"
	"go-support-board/internal/domain"
	"go-support-board/internal/policy"
	"go-support-board/internal/sanitize"
	"go-support-board/internal/transport/http/response"
)

const defaultAuthor = "Anonymous"

type PostHandler struct {
	log   *zap.Logger
	posts domain.PostRepository
	tags  domain.TagRepository
	cache *cache.Cache // 可为 nil（测试/无 redis 环境）
}

func NewPostHandler(log *zap.Logger, posts domain.PostRepository, tags domain.TagRepository, cc *cache.Cache) *PostHandler {
	return &PostHandler{log: log, posts: posts, tags: tags, cache: cc}
}

type postCreateIn struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Author     string   `json:"author"`
	Tags       []string `json:"tags"`
	IsResolved bool     `json:"is_resolved"`
	IsPrivate  bool     `json:"is_private"`
}

type postUpdateIn struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Author     *string   `json:"author"`
	Tags       *[]string `json:"tags"`
	IsResolved *bool     `json:"is_resolved"`
	IsPrivate  *bool     `json:"is_private"`
}

// List GET /posts：支持 q 并集搜索与逐字段过滤；无权限的行按策略打码后仍然返回
func (h *PostHandler) List(c *gin.Context) {
	sub := session.Subject(c)

	f := domain.PostFilter{
		Q:       c.Query("q"),
		Title:   c.Query("title"),
		Content: c.Query("content"),
		Author:  c.Query("author"),
		Tag:     c.Query("tag"),
	}
	if s := c.Query("is_resolved"); s != "" {
		b := strings.EqualFold(s, "true")
		f.Resolved = &b
	}

	posts, err := h.posts.List(c.Request.Context(), f)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	rows := make([]postView, 0, len(posts))
	for i := range posts {
		rows = append(rows, newPostView(&posts[i], sub))
	}
	response.OK(c, gin.H{"posts": rows, "count": len(rows)})
}

// Create POST /posts：sanitize -> 私密帖登录前置检查 -> 落库 -> 标签 get-or-create
func (h *PostHandler) Create(c *gin.Context) {
	sub := session.Subject(c)

	var in postCreateIn
	if err := bindJSON(c, &in); err != nil {
		fail(c, h.log, err)
		return
	}
	title, err := sanitize.Text(in.Title, sanitize.MaxTitleLen, "title", false)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	content, err := sanitize.Text(in.Content, sanitize.MaxContentLen, "content", false)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	author, err := sanitize.Text(in.Author, sanitize.MaxAuthorLen, "author", true)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if author == "" {
		author = defaultAuthor
	}
	tagNames, err := sanitize.TagList(in.Tags)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	// 匿名不可建私密帖；必须在任何写入之前拒绝
	if in.IsPrivate && sub == nil {
		h.log.Warn("anonymous private post rejected")
		response.Fail(c, http.StatusUnauthorized, response.MsgNeedLogin)
		return
	}

	p := &domain.Post{
		Title:      title,
		Content:    content,
		AuthorName: author,
		IsResolved: in.IsResolved,
		IsPrivate:  in.IsPrivate,
	}
	if sub != nil {
		p.OwnerID = &sub.UID
	}
	if err := h.posts.Create(c.Request.Context(), p); err != nil {
		fail(c, h.log, err)
		return
	}
	if len(tagNames) > 0 {
		if err := h.attachTags(c.Request.Context(), p, tagNames); err != nil {
			fail(c, h.log, err)
			return
		}
	}
	response.Created(c, newPostView(p, sub))
}

// Get GET /posts/:id：详情带评论，策略拒绝时 403（与 404 区分）
func (h *PostHandler) Get(c *gin.Context) {
	p, ok := h.loadPost(c)
	if !ok {
		return
	}
	sub := session.Subject(c)
	if !policy.CanAccess(p, sub) {
		h.denied(c, "detail", p.ID, sub)
		return
	}
	response.OK(c, newPostDetailView(p, sub))
}

// Update PUT /posts/:id：部分更新，缺席字段保持原值，空串同样保持原值
func (h *PostHandler) Update(c *gin.Context) {
	p, ok := h.loadPost(c)
	if !ok {
		return
	}
	sub := session.Subject(c)
	if !policy.CanAccess(p, sub) {
		h.denied(c, "update", p.ID, sub)
		return
	}

	var in postUpdateIn
	if err := bindJSON(c, &in); err != nil {
		fail(c, h.log, err)
		return
	}
	// 全部字段先过校验再落库，任何一项失败都不产生部分写入
	var tagNames []string
	if in.Tags != nil {
		v, err := sanitize.TagList(*in.Tags)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		tagNames = v
	}
	if in.Title != nil {
		v, err := sanitize.Text(*in.Title, sanitize.MaxTitleLen, "title", true)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		if v != "" {
			p.Title = v
		}
	}
	if in.Content != nil {
		v, err := sanitize.Text(*in.Content, sanitize.MaxContentLen, "content", true)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		if v != "" {
			p.Content = v
		}
	}
	if in.Author != nil {
		v, err := sanitize.Text(*in.Author, sanitize.MaxAuthorLen, "author", true)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		if v != "" {
			p.AuthorName = v
		}
	}
	if in.IsResolved != nil {
		p.IsResolved = *in.IsResolved
	}
	if in.IsPrivate != nil {
		p.IsPrivate = *in.IsPrivate
	}

	if err := h.posts.Update(c.Request.Context(), p); err != nil {
		fail(c, h.log, err)
		return
	}
	if in.Tags != nil {
		if err := h.attachTags(c.Request.Context(), p, tagNames); err != nil {
			fail(c, h.log, err)
			return
		}
	}
	response.OK(c, newPostView(p, sub))
}

// Delete DELETE /posts/:id：级联删评论与标签关联
func (h *PostHandler) Delete(c *gin.Context) {
	p, ok := h.loadPost(c)
	if !ok {
		return
	}
	sub := session.Subject(c)
	if !policy.CanAccess(p, sub) {
		h.denied(c, "delete", p.ID, sub)
		return
	}
	if err := h.posts.Delete(c.Request.Context(), p.ID); err != nil {
		fail(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// attachTags 按序 get-or-create 后整体替换关联，并让标签缓存失效
func (h *PostHandler) attachTags(ctx context.Context, p *domain.Post, names []string) error {
	tags := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		t, err := h.tags.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		tags = append(tags, *t)
	}
	if err := h.posts.ReplaceTags(ctx, p, tags); err != nil {
		return err
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, tagsCacheKey)
	}
	return nil
}

func (h *PostHandler) loadPost(c *gin.Context) (*domain.Post, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.MsgNotFound)
		return nil, false
	}
	p, err := h.posts.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		fail(c, h.log, err)
		return nil, false
	}
	if p == nil {
		response.Fail(c, http.StatusNotFound, response.MsgNotFound)
		return nil, false
	}
	return p, true
}

func (h *PostHandler) denied(c *gin.Context, op string, postID uint, sub *domain.Subject) {
	uid := ""
	if sub != nil {
		uid = sub.UID
	}
	h.log.Warn("access denied", zap.String("op", op), zap.Uint("post_id", postID), zap.String("uid", uid))
	response.Fail(c, http.StatusForbidden, response.MsgDenied)
}

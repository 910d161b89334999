package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-support-board/internal/core/session"
	"go-support-board/internal/domain"
	"go-support-board/internal/policy"
	"go-support-board/internal/sanitize"
	"go-support-board/internal/transport/http/response"
)

type CommentHandler struct {
	log      *zap.Logger
	posts    domain.PostRepository
	comments domain.CommentRepository
}

func NewCommentHandler(log *zap.Logger, posts domain.PostRepository, comments domain.CommentRepository) *CommentHandler {
	return &CommentHandler{log: log, posts: posts, comments: comments}
}

type commentCreateIn struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Create POST /posts/:id/comments：私密帖的评论同样走 CanAccess 门禁
func (h *CommentHandler) Create(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.MsgNotFound)
		return
	}
	p, err := h.posts.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if p == nil {
		response.Fail(c, http.StatusNotFound, response.MsgNotFound)
		return
	}

	sub := session.Subject(c)
	if !policy.CanAccess(p, sub) {
		h.log.Warn("comment denied", zap.Uint("post_id", p.ID))
		response.Fail(c, http.StatusForbidden, response.MsgDenied)
		return
	}

	var in commentCreateIn
	if err := bindJSON(c, &in); err != nil {
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

	cm := &domain.Comment{PostID: p.ID, Content: content, AuthorName: author}
	if sub != nil {
		cm.OwnerID = &sub.UID
	}
	if err := h.comments.Create(c.Request.Context(), cm); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Created(c, newCommentView(cm))
}

package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-support-board/internal/core/cache"
	"go-support-board/internal/domain"
	"go-support-board/internal/transport/http/response"
)

const (
	tagsCacheKey = "board:tags:all"
	tagsCacheTTL = 30 * time.Second
)

type TagHandler struct {
	log   *zap.Logger
	tags  domain.TagRepository
	cache *cache.Cache // 可为 nil，直接回源
}

func NewTagHandler(log *zap.Logger, tags domain.TagRepository, cc *cache.Cache) *TagHandler {
	return &TagHandler{log: log, tags: tags, cache: cc}
}

// List GET /tags：读多写少，短 TTL 缓存 + singleflight 回源
func (h *TagHandler) List(c *gin.Context) {
	var (
		tags []domain.Tag
		err  error
	)
	if h.cache != nil {
		var out *[]domain.Tag
		out, err = cache.GetOrLoadJSON(h.cache, c.Request.Context(), tagsCacheKey, tagsCacheTTL,
			func(ctx context.Context) (*[]domain.Tag, error) {
				ts, e := h.tags.List(ctx)
				if e != nil {
					return nil, e
				}
				return &ts, nil
			})
		if out != nil {
			tags = *out
		}
	} else {
		tags, err = h.tags.List(c.Request.Context())
	}
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	response.OK(c, gin.H{"tags": tags})
}

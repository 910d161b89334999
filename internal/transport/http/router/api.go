package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-support-board/internal/core/cache"
	"go-support-board/internal/core/session"
	"go-support-board/internal/identity"
	"go-support-board/internal/repo"
	"go-support-board/internal/transport/http/handler"
	mdw "go-support-board/internal/transport/http/middleware"
)

// NewAPIEngine 组装整条请求链：限流/限并发/体积/超时 -> 恢复 -> 指标/访问日志 -> 会话还原 -> 业务
func NewAPIEngine(l *zap.Logger, db *gorm.DB, cc *cache.Cache, sessions *session.Manager) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
		mdw.ResolveSubject(sessions),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userRepo := repo.NewUserRepo(db)
	postRepo := repo.NewPostRepo(db)
	commentRepo := repo.NewCommentRepo(db)
	tagRepo := repo.NewTagRepo(db)

	userH := handler.NewUserHandler(l, identity.NewReconciler(userRepo), sessions)
	postH := handler.NewPostHandler(l, postRepo, tagRepo, cc)
	commentH := handler.NewCommentHandler(l, postRepo, commentRepo)
	tagH := handler.NewTagHandler(l, tagRepo, cc)

	api := r.Group("/api/v1")
	{
		api.POST("/users/sync", userH.Sync)
		api.GET("/users/me", userH.Me)

		api.GET("/posts", postH.List)
		api.POST("/posts", postH.Create)
		api.GET("/posts/:id", postH.Get)
		api.PUT("/posts/:id", postH.Update)
		api.DELETE("/posts/:id", postH.Delete)

		api.POST("/posts/:id/comments", commentH.Create)

		api.GET("/tags", tagH.List)
	}

	return r
}

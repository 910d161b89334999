package middleware

import (
	"github.com/gin-gonic/gin"

	"go-support-board/internal/core/session"
)

// ResolveSubject 尽力还原会话主体；匿名放行，是否拒绝由各 handler 的策略决定
func ResolveSubject(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.SetSubject(c, m.FromRequest(c))
		c.Next()
	}
}

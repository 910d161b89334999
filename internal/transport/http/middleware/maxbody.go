package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-support-board/internal/transport/http/response"
)

// MaxBodyBytes 传输层体积上限；字段级 50KB 校验在 sanitize 包里另行执行
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			response.AbortFail(c, http.StatusRequestEntityTooLarge, "request body too large")
		}
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-support-board/internal/identity"
	"go-support-board/internal/sanitize"
	"go-support-board/internal/transport/http/response"
)

// bindJSON 先对原始请求体做 50KB 兜底，再解码。
// 类型不匹配（如 tags 里混入非字符串）在这一步即被拒绝。
func bindJSON(c *gin.Context, out any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return &sanitize.ValidationError{Message: "unreadable request body"}
	}
	if err := sanitize.PayloadSize(raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &sanitize.ValidationError{Message: response.MsgBadPayload}
	}
	return nil
}

// fail 统一错误映射：校验类 4xx 只记 warn，其余一律 500 + 通用文案，细节只进日志
func fail(c *gin.Context, log *zap.Logger, err error) {
	var ve *sanitize.ValidationError
	switch {
	case errors.As(err, &ve):
		log.Warn("request rejected", zap.String("field", ve.Field), zap.String("reason", ve.Message))
		response.Fail(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, identity.ErrBadIdentifier):
		log.Warn("identity rejected", zap.Error(err))
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		log.Error("request failed", zap.String("rid", c.GetString("X-Request-ID")), zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, response.MsgInternal)
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-support-board/internal/core/session"
	"go-support-board/internal/identity"
	"go-support-board/internal/transport/http/response"
)

type UserHandler struct {
	log        *zap.Logger
	reconciler *identity.Reconciler
	sessions   *session.Manager
}

func NewUserHandler(log *zap.Logger, r *identity.Reconciler, sm *session.Manager) *UserHandler {
	return &UserHandler{log: log, reconciler: r, sessions: sm}
}

// Sync POST /users/sync：对账身份助手下发的 payload 并立即投影进会话。
// 新建 201，覆盖已有记录 200。
func (h *UserHandler) Sync(c *gin.Context) {
	var p identity.Payload
	if err := bindJSON(c, &p); err != nil {
		fail(c, h.log, err)
		return
	}
	u, created, err := h.reconciler.Reconcile(c.Request.Context(), p)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if err := h.sessions.Project(c, u); err != nil {
		fail(c, h.log, err)
		return
	}
	if created {
		response.Created(c, u)
		return
	}
	response.OK(c, u)
}

// Me GET /users/me：回显当前会话主体
func (h *UserHandler) Me(c *gin.Context) {
	sub := session.Subject(c)
	if sub == nil {
		response.Fail(c, http.StatusUnauthorized, response.MsgNeedLogin)
		return
	}
	response.OK(c, sub)
}

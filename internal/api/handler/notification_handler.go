package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/together/internal/middleware"
	"github.com/d60-Lab/together/pkg/response"
)

// ListNotifications 查询通知（最新在前，页大小受配置上限约束）
// @Summary 查询通知列表
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response{data=service.Snapshot}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	snap, err := h.notifSvc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, snap)
}

// MarkNotificationRead 单条标记已读
// @Summary 标记通知已读
// @Tags 通知
// @Param notification_id path string true "通知ID"
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/{notification_id}/read [post]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifSvc.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("notification_id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllNotificationsRead 全部标记已读（幂等）
// @Summary 全部标记已读
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.notifSvc.MarkAllRead(c.Request.Context(), middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// StreamNotifications SSE 订阅：连接即推全量快照，之后每次变更再推
// @Summary 订阅通知变更
// @Tags 通知
// @Produce text/event-stream
// @Success 200 {object} service.Snapshot
// @Router /api/v1/notifications/stream [get]
func (h *Handler) StreamNotifications(c *gin.Context) {
	ch, cancel, err := h.notifSvc.Subscribe(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		snap, ok := <-ch
		if !ok {
			return false
		}
		c.SSEvent("notifications", snap)
		return true
	})
}

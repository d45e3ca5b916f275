package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/together/internal/middleware"
	"github.com/d60-Lab/together/pkg/response"
)

type reportRequest struct {
	Reason string `json:"reason" binding:"max=512"`
}

// ReportPost 举报帖子（同一人对同一帖只计一次）
// @Summary 举报帖子
// @Tags 治理
// @Accept json
// @Produce json
// @Param post_id path string true "帖子ID"
// @Param request body reportRequest false "举报理由"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id}/report [post]
func (h *Handler) ReportPost(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.modSvc.Report(c.Request.Context(), c.Param("post_id"), middleware.UserID(c), req.Reason); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListPostReports 内部端点：运营复核某帖的举报明细
// @Summary 举报明细
// @Tags 治理
// @Produce json
// @Param post_id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response
// @Router /internal/posts/{post_id}/reports [get]
func (h *Handler) ListPostReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	list, err := h.modSvc.ListReports(c.Request.Context(), c.Param("post_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// KickTriggers 内部端点：立即驱动一轮触发器分发
// （给运维和联调用，常规路径靠轮询）
// @Summary 驱动触发器
// @Tags 治理
// @Success 200 {object} response.Response
// @Router /internal/triggers/kick [post]
func (h *Handler) KickTriggers(c *gin.Context) {
	if err := h.trigger.ProcessOnce(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

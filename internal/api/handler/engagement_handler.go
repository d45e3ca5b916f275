package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/together/internal/middleware"
	"github.com/d60-Lab/together/pkg/response"
)

// ToggleLike 点赞 / 取消点赞（由边的存在性决定方向）
// @Summary 切换点赞
// @Tags 互动
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	liked, err := h.engSvc.ToggleLike(c.Request.Context(), c.Param("post_id"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// CheckIfLiked 查询当前用户是否点过赞
// @Summary 查询点赞状态
// @Tags 互动
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts/{post_id}/like [get]
func (h *Handler) CheckIfLiked(c *gin.Context) {
	liked, err := h.engSvc.CheckIfLiked(c.Request.Context(), c.Param("post_id"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// ListLikers 查询点赞用户
// @Summary 查询点赞列表
// @Tags 互动
// @Param post_id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts/{post_id}/likers [get]
func (h *Handler) ListLikers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	ids, err := h.engSvc.ListLikers(c.Request.Context(), c.Param("post_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": ids})
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/together/internal/middleware"
	"github.com/d60-Lab/together/pkg/response"
)

type addCommentRequest struct {
	Text string `json:"text" binding:"required,max=1024"`
}

// AddComment 发表评论（评论行与计数同事务）
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Param post_id path string true "帖子ID"
// @Param request body addCommentRequest true "评论内容"
// @Success 200 {object} response.Response{data=model.Comment}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.commentSvc.AddComment(c.Request.Context(), c.Param("post_id"), middleware.UserID(c), req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论（仅作者）
// @Summary 删除评论
// @Tags 评论
// @Param post_id path string true "帖子ID"
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{post_id}/comments/{comment_id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	err := h.commentSvc.DeleteComment(c.Request.Context(), c.Param("post_id"), c.Param("comment_id"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListComments 查询评论（创建时间升序）
// @Summary 查询评论列表
// @Tags 评论
// @Param post_id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts/{post_id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	list, err := h.commentSvc.ListComments(c.Request.Context(), c.Param("post_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

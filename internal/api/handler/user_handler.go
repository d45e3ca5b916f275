package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/together/internal/middleware"
	"github.com/d60-Lab/together/pkg/response"
)

type createUserRequest struct {
	Username    string `json:"username" binding:"required,username"`
	DisplayName string `json:"display_name"`
}

// CreateUser 注册建档（uid 来自身份提供方 token）
// @Summary 创建用户档案
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body createUserRequest true "用户信息"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 409 {object} response.Response
// @Router /api/v1/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.userSvc.CreateUser(c.Request.Context(), middleware.UserID(c), req.Username, req.DisplayName)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// Me 当前用户档案
// @Summary 查询当前用户
// @Tags 用户
// @Success 200 {object} response.Response{data=model.User}
// @Router /api/v1/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.userSvc.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// GetUserByUsername 按用户名查档案（大小写不敏感）
// @Summary 按用户名查询
// @Tags 用户
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/by-username/{username} [get]
func (h *Handler) GetUserByUsername(c *gin.Context) {
	user, err := h.userSvc.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// GetUsers 批量查询用户（渲染点赞/粉丝列表用）
// @Summary 批量查询用户
// @Tags 用户
// @Param ids query string true "逗号分隔的用户ID"
// @Success 200 {object} response.Response{data=[]model.User}
// @Router /api/v1/users [get]
func (h *Handler) GetUsers(c *gin.Context) {
	raw := strings.Split(c.Query("ids"), ",")
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		response.BadRequest(c, "missing ids")
		return
	}
	users, err := h.userSvc.GetUsers(c.Request.Context(), ids)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, users)
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
	Bio         *string `json:"bio"`
}

// UpdateProfile 资料编辑
// @Summary 更新个人资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body updateProfileRequest true "资料字段"
// @Success 200 {object} response.Response
// @Router /api/v1/users/me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.userSvc.UpdateProfile(c.Request.Context(), middleware.UserID(c), req.DisplayName, req.PhotoURL, req.Bio)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

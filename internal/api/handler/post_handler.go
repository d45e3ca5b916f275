package handler

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/d60-Lab/together/internal/middleware"
	"github.com/d60-Lab/together/internal/service"
	"github.com/d60-Lab/together/pkg/response"
)

type createPostRequest struct {
	Prompt         string `json:"prompt" binding:"required"`
	NegativePrompt string `json:"negative_prompt"`
	Model          string `json:"model"`
	MediaType      string `json:"media_type" binding:"required,oneof=image video audio"`
	MediaURL       string `json:"media_url" binding:"required,url"`
	ThumbnailURL   string `json:"thumbnail_url"`
	IsPublic       *bool  `json:"is_public"`
}

func (r *createPostRequest) input() service.PostInput {
	isPublic := true
	if r.IsPublic != nil {
		isPublic = *r.IsPublic
	}
	return service.PostInput{
		Prompt:         r.Prompt,
		NegativePrompt: r.NegativePrompt,
		Model:          r.Model,
		MediaType:      r.MediaType,
		MediaURL:       r.MediaURL,
		ThumbnailURL:   r.ThumbnailURL,
		IsPublic:       isPublic,
	}
}

// CreatePost 发帖
// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 403 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.publisher.CreatePost(c.Request.Context(), middleware.UserID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

// RemixPost 基于原帖二创
// @Summary 二创帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param post_id path string true "原帖ID"
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id}/remix [post]
func (h *Handler) RemixPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.publisher.Remix(c.Request.Context(), middleware.UserID(c), c.Param("post_id"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

// GetPost 查询单帖
// @Summary 查询帖子
// @Tags 帖子
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postRepo.GetByID(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}
	response.Success(c, post)
}

// ListPosts 公开帖子流（时间倒序）
// @Summary 查询帖子列表
// @Tags 帖子
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	list, err := h.postRepo.ListPublic(c.Request.Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListRemixes 查询某帖的二创
// @Summary 查询二创列表
// @Tags 帖子
// @Param post_id path string true "原帖ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts/{post_id}/remixes [get]
func (h *Handler) ListRemixes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	list, err := h.postRepo.ListRemixes(c.Request.Context(), c.Param("post_id"), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListUserPosts 查询某作者的帖子（个人主页）
// @Summary 查询作者帖子列表
// @Tags 帖子
// @Param user_id path string true "作者ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{user_id}/posts [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	list, err := h.postRepo.ListByAuthor(c.Request.Context(), c.Param("user_id"), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// UploadMedia 上传媒体文件，返回公开 URL
// @Summary 上传媒体
// @Tags 帖子
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "媒体文件"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/media [post]
func (h *Handler) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	path := fmt.Sprintf("%s/%s/%s%s",
		middleware.UserID(c),
		time.Now().Format("20060102"),
		uuid.New().String(),
		filepath.Ext(file.Filename))
	url, err := h.blob.UploadFile(file, path)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}

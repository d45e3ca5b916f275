package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/together/internal/cache"
	"github.com/d60-Lab/together/internal/repository"
	"github.com/d60-Lab/together/internal/service"
	"github.com/d60-Lab/together/internal/storage"
	"github.com/d60-Lab/together/pkg/response"
)

// Handler 聚合全部业务服务
type Handler struct {
	userSvc    service.UserService
	relService service.RelationshipService
	engSvc     service.EngagementService
	commentSvc service.CommentService
	notifSvc   service.NotificationService
	modSvc     service.ModerationService
	publisher  *service.Publisher
	trigger    *service.TriggerWorker
	fanCache   *cache.FollowerCache
	blob       storage.BlobStore
	postRepo   repository.PostRepository
}

func New(
	userSvc service.UserService,
	relService service.RelationshipService,
	engSvc service.EngagementService,
	commentSvc service.CommentService,
	notifSvc service.NotificationService,
	modSvc service.ModerationService,
	publisher *service.Publisher,
	trigger *service.TriggerWorker,
	fanCache *cache.FollowerCache,
	blob storage.BlobStore,
	postRepo repository.PostRepository,
) *Handler {
	return &Handler{
		userSvc:    userSvc,
		relService: relService,
		engSvc:     engSvc,
		commentSvc: commentSvc,
		notifSvc:   notifSvc,
		modSvc:     modSvc,
		publisher:  publisher,
		trigger:    trigger,
		fanCache:   fanCache,
		blob:       blob,
		postRepo:   postRepo,
	}
}

// fail 按错误分类映射 HTTP 状态
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrFollowSelf):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrTimeout):
		response.GatewayTimeout(c, err.Error())
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrBanned):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

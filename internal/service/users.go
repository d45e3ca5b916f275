package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

// UsernamePattern 用户名规则：小写字母/数字/下划线，3-20 位
var UsernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// UserService 用户档案：注册建档、资料编辑、查询
type UserService interface {
	CreateUser(ctx context.Context, uid, username, displayName string) (*model.User, error)
	GetUser(ctx context.Context, uid string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, uid string, displayName, photoURL, bio *string) error
	GetUsers(ctx context.Context, ids []string) ([]*model.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	opTimeout time.Duration
}

func NewUserService(userRepo repository.UserRepository, opTimeout time.Duration) UserService {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &userService{userRepo: userRepo, opTimeout: opTimeout}
}

func (s *userService) CreateUser(ctx context.Context, uid, username, displayName string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if uid == "" || !UsernamePattern.MatchString(username) {
		return nil, ErrValidation
	}
	if displayName == "" {
		displayName = username
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	user := &model.User{ID: uid, Username: username, DisplayName: displayName}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, mapErr(err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, uid string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	u, err := s.userRepo.GetByID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	u, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, displayName, photoURL, bio *string) error {
	fields := map[string]any{}
	if displayName != nil {
		if *displayName == "" {
			return ErrValidation
		}
		fields["display_name"] = *displayName
	}
	if photoURL != nil {
		fields["photo_url"] = *photoURL
	}
	if bio != nil {
		fields["bio"] = *bio
	}
	if len(fields) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.userRepo.UpdateProfile(ctx, uid, fields)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return mapErr(err)
}

func (s *userService) GetUsers(ctx context.Context, ids []string) ([]*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	users, err := s.userRepo.GetByIDs(ctx, ids)
	return users, mapErr(err)
}

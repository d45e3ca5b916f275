package service

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource already exists")
	ErrValidation       = errors.New("invalid input")
	ErrTimeout          = errors.New("operation timed out")
	ErrPermissionDenied = errors.New("permission denied")
	ErrFollowSelf       = errors.New("cannot follow self")
	ErrBanned           = errors.New("user is banned")
	// ErrUnavailable 依赖的基础设施未配置或不可达（如订阅需要 redis）
	ErrUnavailable = errors.New("feature unavailable")
)

// mapErr 把 context 超时归入 ErrTimeout，便于上层统一处理
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

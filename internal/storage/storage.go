package storage

import (
	"fmt"
	"mime/multipart"

	"github.com/d60-Lab/together/config"
)

// BlobStore 媒体对象存储：按路径写入，返回可公开访问的 URL
type BlobStore interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}

// New 按配置选择后端
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		return NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.LocalBase)
	case "s3":
		return NewS3Storage(cfg.Storage.S3Region, cfg.Storage.S3Bucket)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

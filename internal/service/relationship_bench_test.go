package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
)

func setupRelBenchDB(b *testing.B) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		b.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.User{}, &model.Follow{}, &model.Fan{}, &model.Outbox{}); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	return db
}

// 关注写路径：正向边、粉丝冗余边与计数同事务落地
func BenchmarkFollowWrite_WithFanRedundancy(b *testing.B) {
	db := setupRelBenchDB(b)
	svc := NewRelationshipService(db, repository.NewFollowRepository(db), repository.NewFanRepository(db), nil, time.Minute)
	ctx := context.Background()

	users := make([]model.User, 1000)
	for i := range users {
		uid := fmt.Sprintf("u%04d", i)
		users[i] = model.User{ID: uid, Username: uid, DisplayName: uid}
	}
	if err := db.Create(&users).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if from == to {
			continue
		}
		_ = svc.Follow(ctx, from, to)
	}
}

func BenchmarkQueryFansAndFollowing(b *testing.B) {
	db := setupRelBenchDB(b)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	svc := NewRelationshipService(db, followRepo, fanRepo, nil, time.Minute)
	ctx := context.Background()

	// 构造：u0 有 N 个粉丝，同时 u0 也关注 N 个用户
	const N = 5000
	if err := db.Create(&model.User{ID: "u0", Username: "u0", DisplayName: "u0"}).Error; err != nil {
		b.Fatalf("seed u0: %v", err)
	}
	for i := 1; i <= N; i++ {
		uid := fmt.Sprintf("u%v", i)
		_ = db.Create(&model.User{ID: uid, Username: uid, DisplayName: uid}).Error
		_ = svc.Follow(ctx, uid, "u0")
		_ = svc.Follow(ctx, "u0", uid)
	}

	b.ResetTimer()
	b.Run("ListFans", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = fanRepo.ListFans(ctx, "u0", 0, 50)
		}
	})

	b.Run("ListFollowing", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowings(ctx, "u0", 0, 50)
		}
	})
}

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/together/config"
	"github.com/d60-Lab/together/internal/model"
	"github.com/d60-Lab/together/internal/repository"
	"github.com/d60-Lab/together/internal/service"
	"github.com/d60-Lab/together/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 { return 0 }
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 { k = 0 }
	if k >= len(xs) { k = len(xs)-1 }
	return xs[k]
}

// 压测点赞路径：N 个用户并发对同一帖子 ToggleLike，
// 验证计数与边数在高争用下零漂移
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	likeRepo := repository.NewLikeRepository(db)
	engSvc := service.NewEngagementService(db, likeRepo, 10*time.Second)

	ctx := context.Background()

	N := 10000
	if s := os.Getenv("N"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 { N = n }
	}
	CONC := 16
	if s := os.Getenv("CONC"); s != "" {
		if c, err := strconv.Atoi(s); err == nil && c > 0 { CONC = c }
	}

	// seed: 一个作者 + 一帖 + N 个点赞用户
	author := model.User{ID: "author", Username: "author", DisplayName: "author"}
	_ = db.Where("id = ?", author.ID).FirstOrCreate(&author).Error
	post := model.Post{ID: uuid.New().String(), AuthorID: author.ID, Prompt: "bench", MediaType: model.MediaImage, MediaURL: "https://example.com/m.png", IsPublic: true}
	if err := db.Create(&post).Error; err != nil { panic(err) }

	users := make([]model.User, N)
	batch := 1000
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		users[i] = model.User{ID: id, Username: "u" + id[:8], DisplayName: "u" + id[:8]}
		if (i+1)%batch == 0 {
			sub := users[i+1-batch : i+1]
			_ = db.Create(&sub).Error
		}
	}
	if N%batch != 0 {
		sub := users[N-N%batch:]
		_ = db.Create(&sub).Error
	}

	recs := make([]time.Duration, 0, N)
	recCh := make(chan time.Duration, N)
	feed := make(chan int, N)
	for i := 0; i < N; i++ { feed <- i }
	close(feed)

	workers := CONC
	if workers > N { workers = N }
	doneCh := make(chan struct{}, workers)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				_, _ = engSvc.ToggleLike(ctx, post.ID, users[i].ID)
				recCh <- time.Since(st)
			}
			doneCh <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ { <-doneCh }
	close(recCh)
	for d := range recCh { recs = append(recs, d) }
	total := time.Since(t0)

	// verify: counter vs edges
	var p model.Post
	_ = db.Where("id = ?", post.ID).First(&p).Error
	edges := must(likeRepo.CountByPost(ctx, post.ID))

	fmt.Printf("N=%d, CONC=%d\n", N, CONC)
	fmt.Printf("ToggleLike total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		total, total/time.Duration(N), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
	fmt.Printf("likes_count=%d, like edges=%d, drift=%d\n", p.LikesCount, edges, p.LikesCount-edges)
}

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/allyhaasmessimer/liesel-blog/internal/model"
	"github.com/allyhaasmessimer/liesel-blog/pkg/logger"
)

const (
	listKey = "blog:posts:newest"
	listTTL = 30 * time.Second
)

// PostCache 首页文章列表的 redis 缓存；client 为 nil 时所有操作降级为 miss
type PostCache struct {
	client *redis.Client
}

func NewPostCache(client *redis.Client) *PostCache { return &PostCache{client: client} }

func (c *PostCache) GetList(ctx context.Context) ([]*model.Post, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("post cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var posts []*model.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		// 缓存内容损坏则当作 miss，由下一次 SetList 覆盖
		return nil, false
	}
	return posts, true
}

func (c *PostCache) SetList(ctx context.Context, posts []*model.Post) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listKey, raw, listTTL).Err(); err != nil {
		logger.Warn("post cache set failed", zap.Error(err))
	}
}

// Invalidate 任何文章写操作后调用
func (c *PostCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, listKey).Err(); err != nil {
		logger.Warn("post cache invalidate failed", zap.Error(err))
	}
}

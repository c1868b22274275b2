package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/allyhaasmessimer/liesel-blog/internal/cache"
	"github.com/allyhaasmessimer/liesel-blog/internal/model"
	"github.com/allyhaasmessimer/liesel-blog/internal/repository"
	"github.com/allyhaasmessimer/liesel-blog/internal/storage"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("only the author can modify this post")
)

// 首页只展示最新 20 篇，没有分页游标
const newestLimit = 20

// PostInput 创建 / 更新文章的入参；Cover 为 nil 表示不更换封面
type PostInput struct {
	Title   string
	Summary string
	Content string
	Cover   *multipart.FileHeader
}

// PostService 文章生命周期：create -> update* -> delete
type PostService interface {
	Create(ctx context.Context, identity Identity, in PostInput) (*model.Post, error)
	Update(ctx context.Context, identity Identity, postID string, in PostInput) (*model.Post, error)
	Delete(ctx context.Context, identity Identity, postID string) error
	List(ctx context.Context) ([]*model.Post, error)
	Get(ctx context.Context, postID string) (*model.Post, error)
}

type postService struct {
	posts  repository.PostRepository
	covers *storage.CoverStore
	cache  *cache.PostCache
}

func NewPostService(posts repository.PostRepository, covers *storage.CoverStore, c *cache.PostCache) PostService {
	return &postService{posts: posts, covers: covers, cache: c}
}

func (s *postService) Create(ctx context.Context, identity Identity, in PostInput) (*model.Post, error) {
	post := &model.Post{
		ID:       uuid.New().String(),
		Title:    in.Title,
		Summary:  in.Summary,
		Content:  in.Content,
		AuthorID: identity.UserID,
	}
	if in.Cover != nil {
		path, err := s.covers.Save(in.Cover)
		if err != nil {
			return nil, err
		}
		post.Cover = path
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return s.posts.GetByID(ctx, post.ID)
}

// Update 仅作者可改；不带新封面时保留原封面
func (s *postService) Update(ctx context.Context, identity Identity, postID string, in PostInput) (*model.Post, error) {
	post, err := s.loadOwned(ctx, identity, postID)
	if err != nil {
		return nil, err
	}
	post.Title = in.Title
	post.Summary = in.Summary
	post.Content = in.Content
	if in.Cover != nil {
		path, err := s.covers.Save(in.Cover)
		if err != nil {
			return nil, err
		}
		post.Cover = path
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return s.posts.GetByID(ctx, post.ID)
}

func (s *postService) Delete(ctx context.Context, identity Identity, postID string) error {
	if _, err := s.loadOwned(ctx, identity, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *postService) List(ctx context.Context) ([]*model.Post, error) {
	if posts, ok := s.cache.GetList(ctx); ok {
		return posts, nil
	}
	posts, err := s.posts.ListNewest(ctx, newestLimit)
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, posts)
	return posts, nil
}

func (s *postService) Get(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// loadOwned 读取文章并校验调用方即作者
func (s *postService) loadOwned(ctx context.Context, identity Identity, postID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.AuthorID != identity.UserID {
		return nil, ErrNotPostAuthor
	}
	return post, nil
}

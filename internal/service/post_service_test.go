package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/allyhaasmessimer/liesel-blog/internal/cache"
	"github.com/allyhaasmessimer/liesel-blog/internal/model"
	"github.com/allyhaasmessimer/liesel-blog/internal/repository"
	"github.com/allyhaasmessimer/liesel-blog/internal/storage"
)

type postServiceFixture struct {
	svc PostService
	db  *gorm.DB
}

func setupPostService(t *testing.T, c *cache.PostCache) *postServiceFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}))

	covers, err := storage.NewCoverStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	if c == nil {
		c = cache.NewPostCache(nil)
	}
	return &postServiceFixture{
		svc: NewPostService(repository.NewPostRepository(db), covers, c),
		db:  db,
	}
}

func (f *postServiceFixture) seedUser(t *testing.T, username string) Identity {
	t.Helper()
	u := &model.User{ID: uuid.New().String(), Username: username, Password: "hash"}
	require.NoError(t, f.db.Create(u).Error)
	return Identity{UserID: u.ID, Username: u.Username}
}

func coverFile(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("img"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestPostService_CreateWithCover(t *testing.T) {
	f := setupPostService(t, nil)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")

	post, err := f.svc.Create(ctx, alice, PostInput{
		Title: "t", Summary: "s", Content: "c", Cover: coverFile(t, "cover.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, post.AuthorID)
	assert.Equal(t, "alice", post.Author.Username)
	assert.Contains(t, post.Cover, ".jpg")
	assert.False(t, post.CreatedAt.IsZero())
}

func TestPostService_UpdateByNonAuthorForbidden(t *testing.T) {
	f := setupPostService(t, nil)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")

	post, err := f.svc.Create(ctx, alice, PostInput{Title: "original"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, bob, post.ID, PostInput{Title: "hijacked"})
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	// 原文必须保持不变
	got, err := f.svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title)
	assert.Equal(t, alice.UserID, got.AuthorID)
}

func TestPostService_UpdateWithoutCoverKeepsCover(t *testing.T) {
	f := setupPostService(t, nil)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")

	post, err := f.svc.Create(ctx, alice, PostInput{Title: "t", Cover: coverFile(t, "a.png")})
	require.NoError(t, err)
	require.NotEmpty(t, post.Cover)

	updated, err := f.svc.Update(ctx, alice, post.ID, PostInput{Title: "t2", Summary: "s2", Content: "c2"})
	require.NoError(t, err)
	assert.Equal(t, post.Cover, updated.Cover)
	assert.Equal(t, "t2", updated.Title)
}

func TestPostService_UpdateWithNewCoverReplacesCover(t *testing.T) {
	f := setupPostService(t, nil)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")

	post, err := f.svc.Create(ctx, alice, PostInput{Title: "t", Cover: coverFile(t, "a.png")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, alice, post.ID, PostInput{Title: "t", Cover: coverFile(t, "b.gif")})
	require.NoError(t, err)
	assert.NotEqual(t, post.Cover, updated.Cover)
	assert.Contains(t, updated.Cover, ".gif")
}

func TestPostService_UpdateUnknownPost(t *testing.T) {
	f := setupPostService(t, nil)
	alice := f.seedUser(t, "alice")

	_, err := f.svc.Update(context.Background(), alice, "missing", PostInput{Title: "t"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_DeleteTwice(t *testing.T) {
	f := setupPostService(t, nil)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")

	post, err := f.svc.Create(ctx, alice, PostInput{Title: "t"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, alice, post.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, alice, post.ID), ErrPostNotFound)
}

func TestPostService_DeleteByNonAuthorForbidden(t *testing.T) {
	f := setupPostService(t, nil)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")

	post, err := f.svc.Create(ctx, alice, PostInput{Title: "t"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, bob, post.ID), ErrNotPostAuthor)
	_, err = f.svc.Get(ctx, post.ID)
	assert.NoError(t, err)
}

func TestPostService_ListNewestFirst(t *testing.T) {
	f := setupPostService(t, nil)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")

	// P1 (t=1) -> P2 (t=2) -> P3 (t=3)
	base := time.Now().Add(-time.Hour)
	ids := make([]string, 3)
	for i := 0; i < 3; i++ {
		p := &model.Post{ID: uuid.New().String(), Title: "p", AuthorID: alice.UserID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.db.Create(p).Error)
		ids[i] = p.ID
	}

	got, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[1], got[1].ID)
	assert.Equal(t, ids[0], got[2].ID)
	assert.Equal(t, "alice", got[0].Author.Username)
}

func TestPostService_ListCacheInvalidatedOnCreate(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewPostCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	f := setupPostService(t, c)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")

	_, err := f.svc.Create(ctx, alice, PostInput{Title: "first"})
	require.NoError(t, err)

	got, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// 命中缓存后新建文章，失效逻辑必须让下一次 List 看到新文章
	_, err = f.svc.Create(ctx, alice, PostInput{Title: "second"})
	require.NoError(t, err)

	got, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

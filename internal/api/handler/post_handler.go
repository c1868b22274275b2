package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/allyhaasmessimer/liesel-blog/internal/api/middleware"
	"github.com/allyhaasmessimer/liesel-blog/internal/service"
	"github.com/allyhaasmessimer/liesel-blog/pkg/response"
)

type postForm struct {
	Title   string `form:"title" binding:"required"`
	Summary string `form:"summary"`
	Content string `form:"content"`
}

type updatePostForm struct {
	ID string `form:"id" binding:"required"`
	postForm
}

// writePostError 文章操作错误到 HTTP 的统一映射：
// 未找到 404，非作者 400，其余按存储故障处理
func writePostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotPostAuthor):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// CreatePost 发布文章（multipart，封面字段 file 可选）
// @Summary 发布文章
// @Tags 文章
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "标题"
// @Param summary formData string false "摘要"
// @Param content formData string false "正文"
// @Param file formData file false "封面图"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /post [post]
func (h *Handler) CreatePost(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "missing identity")
		return
	}
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	in := service.PostInput{Title: form.Title, Summary: form.Summary, Content: form.Content}
	if fh, err := c.FormFile("file"); err == nil {
		in.Cover = fh
	}
	post, err := h.postSvc.Create(c.Request.Context(), identity, in)
	if err != nil {
		writePostError(c, err)
		return
	}
	response.Success(c, post)
}

// UpdatePost 修改文章（仅作者；不传 file 时保留原封面）
// @Summary 修改文章
// @Tags 文章
// @Accept multipart/form-data
// @Produce json
// @Param id formData string true "文章ID"
// @Param title formData string true "标题"
// @Param summary formData string false "摘要"
// @Param content formData string false "正文"
// @Param file formData file false "新封面图"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /post [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "missing identity")
		return
	}
	var form updatePostForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	in := service.PostInput{Title: form.Title, Summary: form.Summary, Content: form.Content}
	if fh, err := c.FormFile("file"); err == nil {
		in.Cover = fh
	}
	post, err := h.postSvc.Update(c.Request.Context(), identity, form.ID, in)
	if err != nil {
		writePostError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除文章（仅作者）
// @Summary 删除文章
// @Tags 文章
// @Produce json
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /post/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "missing identity")
		return
	}
	if err := h.postSvc.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		writePostError(c, err)
		return
	}
	response.Success(c, "deleted")
}

// ListPosts 最新 20 篇文章，作者已展开
// @Summary 文章列表
// @Tags 文章
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Post}
// @Router /post [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.postSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, posts)
}

// GetPost 文章详情，作者已展开
// @Summary 文章详情
// @Tags 文章
// @Produce json
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /post/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writePostError(c, err)
		return
	}
	response.Success(c, post)
}

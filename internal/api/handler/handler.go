package handler

import (
	"github.com/allyhaasmessimer/liesel-blog/internal/service"
)

// Handler 聚合所有 HTTP 处理器依赖
type Handler struct {
	authSvc service.AuthService
	postSvc service.PostService
}

func New(authSvc service.AuthService, postSvc service.PostService) *Handler {
	return &Handler{authSvc: authSvc, postSvc: postSvc}
}

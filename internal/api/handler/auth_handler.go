package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/allyhaasmessimer/liesel-blog/internal/api/middleware"
	"github.com/allyhaasmessimer/liesel-blog/internal/service"
	"github.com/allyhaasmessimer/liesel-blog/pkg/response"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.BadRequest(c, verrs.Error())
		return
	}
	response.BadRequest(c, err.Error())
}

// Register 用户注册
// @Summary 注册新用户
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "注册信息"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /register [post]
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.authSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, user)
}

// Login 登录并通过 cookie 下发令牌
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, token, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.BadRequest(c, "User not found")
		case errors.Is(err, service.ErrWrongCredentials):
			response.BadRequest(c, "Wrong credentials")
		default:
			response.InternalError(c, err)
		}
		return
	}
	// 会话 cookie，不设 Max-Age：令牌本身无过期时间
	c.SetCookie("token", token, 0, "/", "", false, true)
	response.Success(c, gin.H{"id": user.ID, "username": user.Username})
}

// Profile 返回当前登录身份
// @Summary 查询当前用户
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response{data=service.Identity}
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *Handler) Profile(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "missing identity")
		return
	}
	response.Success(c, identity)
}

// Logout 清除令牌 cookie
// @Summary 退出登录
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	response.Success(c, "ok")
}

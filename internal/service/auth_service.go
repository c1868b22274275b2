package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/allyhaasmessimer/liesel-blog/internal/model"
	"github.com/allyhaasmessimer/liesel-blog/internal/repository"
	"github.com/allyhaasmessimer/liesel-blog/pkg/jwtx"
)

var (
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongCredentials = errors.New("wrong credentials")
)

// Identity 鉴权中间件解析出的调用方身份
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// AuthService 注册 / 登录
type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *jwtx.TokenService
}

func NewAuthService(users repository.UserRepository, tokens *jwtx.TokenService) AuthService {
	return &authService{users: users, tokens: tokens}
}

// Register 明文密码只在这里出现一次，落库前做 bcrypt 摘要。
// 用户名唯一性完全交给唯一索引，并发注册也只会有一个成功。
func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login 校验通过后签发令牌，由 handler 写入 cookie
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrWrongCredentials
	}
	token, err := s.tokens.Sign(user.Username, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

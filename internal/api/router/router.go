package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/allyhaasmessimer/liesel-blog/config"
	_ "github.com/allyhaasmessimer/liesel-blog/docs"
	"github.com/allyhaasmessimer/liesel-blog/internal/api/handler"
	"github.com/allyhaasmessimer/liesel-blog/internal/api/middleware"
	"github.com/allyhaasmessimer/liesel-blog/pkg/jwtx"
)

// New 组装 gin 引擎：中间件、静态文件与全部路由。
// 路由路径是对外契约的一部分，不加版本前缀。
func New(cfg *config.Config, h *handler.Handler, tokens *jwtx.TokenService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Trace.Endpoint != "" {
		r.Use(otelgin.Middleware("liesel-blog"))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// 上传的封面按存储文件名静态回源
	r.Static("/uploads", cfg.Upload.Dir)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authRequired := middleware.Auth(tokens)

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/profile", authRequired, h.Profile)
	r.POST("/logout", h.Logout)

	r.GET("/post", h.ListPosts)
	r.GET("/post/:id", h.GetPost)
	r.POST("/post", authRequired, h.CreatePost)
	r.PUT("/post", authRequired, h.UpdatePost)
	r.DELETE("/post/:id", authRequired, h.DeletePost)

	return r
}

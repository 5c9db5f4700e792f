package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/middleware"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
	"github.com/Ahmadreza-Avandi/mami-land/internal/responder"
	"github.com/Ahmadreza-Avandi/mami-land/internal/service"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	authService  *service.AuthService
	chatService  *service.ChatService
	adminService *service.AdminService
	db           *pgxpool.Pool
	cache        *redis.Client
	users        *repository.UserRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	codeRepo := repository.NewAccessCodeRepository(db)
	chatRepo := repository.NewChatRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	logRepo := repository.NewLogRepository(db)

	rsp := responder.NewProxyResponder(cfg.Responder, log)

	auth := service.NewAuthService(userRepo, adminRepo, codeRepo, cfg, log)
	chat := service.NewChatService(chatRepo, profileRepo, rsp, log)
	admin := service.NewAdminService(codeRepo, userRepo, logRepo, cfg, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		authService:  auth,
		chatService:  chat,
		adminService: admin,
		db:           db,
		cache:        cache,
		users:        userRepo,
	}
}

// AuthService exposes the gate for startup wiring (bootstrap admin).
func (h HandlerSet) AuthService() *service.AuthService {
	return h.authService
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	limited := func() gin.HandlerFunc {
		if h.cfg.RateLimit.Enabled && h.cache != nil {
			return middleware.RateLimit(h.cache, h.cfg.RateLimit.QPS, h.log)
		}
		return func(c *gin.Context) { c.Next() }
	}()

	auth := v1.Group("/auth")
	auth.POST("/access-code", limited, h.ValidateAccessCode)
	auth.POST("/register", limited, h.RegisterUser)
	auth.POST("/login", limited, h.Login)

	me := v1.Group("/auth")
	me.Use(middleware.Auth(h.cfg, h.users))
	me.GET("/me", h.Me)

	chat := v1.Group("/chat")
	chat.Use(middleware.Auth(h.cfg, h.users))
	chat.GET("/sessions", h.ListSessions)
	chat.POST("/sessions", h.CreateSession)
	chat.GET("/sessions/:id/messages", h.ListMessages)
	chat.POST("/sessions/:id/messages", h.SendMessage)
	chat.POST("/sessions/:id/reset", h.ResetChat)
	chat.DELETE("/sessions/:id", h.DeleteSession)

	v1.POST("/admin/login", limited, h.AdminLogin)

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(h.cfg))
	admin.GET("/access-codes", h.ListAccessCodes)
	admin.POST("/access-codes", h.GenerateAccessCode)
	admin.DELETE("/access-codes/:code", h.DeleteAccessCode)
	admin.GET("/users", h.ListUsers)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.GET("/logs", h.ListLogs)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sigma/auth/internal/config"
	"sigma/auth/internal/domain"
	"sigma/auth/internal/email"
	"sigma/auth/internal/middleware"
	"sigma/auth/internal/repository"
	"sigma/auth/internal/security"
	"sigma/auth/internal/usecase"
)

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	db        *pgxpool.Pool
	cache     *redis.Client
	users     *repository.UserRepository
	sessions  *repository.SessionRepository
	tokens    domain.TokenService
	register  *usecase.RegisterUser
	verify    *usecase.VerifyUser
	login     *usecase.LoginUser
	refresh   *usecase.RefreshToken
	logout    *usecase.Logout
	logoutAll *usecase.LogoutAll
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	codeRepo := repository.NewVerificationCodeRepository(db)

	passwords := security.NewArgon2PasswordService()
	tokens := security.NewJWTTokenService(
		cfg.Security.JWTSecret,
		cfg.Security.JWTIssuer,
		cfg.Security.JWTAudience,
		cfg.Security.AccessTokenTTL,
	)
	mailer := email.NewOutbox(cache, cfg.Mail.Stream, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		db:       db,
		cache:    cache,
		users:    userRepo,
		sessions: sessionRepo,
		tokens:   tokens,
		register: usecase.NewRegisterUser(userRepo, codeRepo, passwords, mailer, cfg.Security.CodeTTL, log),
		verify:   usecase.NewVerifyUser(userRepo, codeRepo, mailer, log),
		login: usecase.NewLoginUser(
			userRepo, sessionRepo, passwords, tokens, mailer,
			cfg.Security.MaxSessions, cfg.Security.SessionTTL, cfg.Security.AccessTokenTTL,
			log,
		),
		refresh:   usecase.NewRefreshToken(sessionRepo, tokens, cfg.Security.AccessTokenTTL, log),
		logout:    usecase.NewLogout(sessionRepo, log),
		logoutAll: usecase.NewLogoutAll(sessionRepo, log),
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/verify", h.VerifyUser)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.tokens, h.users, h.sessions))
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:deviceId", h.RevokeSession)
		protected.POST("/logout-all", h.LogoutAll)
	}
}

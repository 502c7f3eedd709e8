package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"call-relay-backend/internal/auth"
	"call-relay-backend/internal/config"
	"call-relay-backend/internal/handler"
	"call-relay-backend/internal/presence"
	"call-relay-backend/internal/push"
	"call-relay-backend/internal/service"
	"call-relay-backend/internal/store"
)

// Server Fiber 서버 래퍼
type Server struct {
	app           *fiber.App
	cfg           *config.Config
	db            *gorm.DB
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	callHandler   *handler.CallHandler
	signalHandler *handler.SignalHandler
	healthHandler *handler.HealthHandler
	jwtManager    *auth.JWTManager
}

// New 새 서버 인스턴스 생성
func New(cfg *config.Config, db *gorm.DB) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Call Signaling Relay",
		ServerHeader:          "Fiber",
		StrictRouting:         true,
		CaseSensitive:         true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		BodyLimit:             1 * 1024 * 1024, // 1MB - SDP/ICE는 작다
		DisableStartupMessage: false,
	})

	// Auth 초기화
	jwtManager := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	googleAuth := auth.NewGoogleAuthenticator(cfg.Auth.GoogleClientID)

	// Presence 초기화 (선택적 - Redis 없이도 기동)
	presenceManager, err := presence.NewManager(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("⚠️ Redis presence unavailable: %v (status mirror disabled)", err)
		presenceManager = nil
	} else {
		log.Printf("✅ Redis presence connected (addr: %s)", cfg.Redis.Addr)
	}

	// 푸시 발송기 초기화 (선택적)
	var sender push.Sender = push.LogSender{}
	if cfg.Push.ProjectID != "" && cfg.Push.CredentialsFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Push.Timeout)
		fcmSender, err := push.NewFCMSender(ctx, cfg.Push.ProjectID, cfg.Push.CredentialsFile)
		cancel()
		if err != nil {
			log.Printf("⚠️ FCM initialization failed: %v (push disabled)", err)
		} else {
			log.Printf("✅ FCM push initialized (project: %s)", cfg.Push.ProjectID)
			sender = fcmSender
		}
	} else {
		log.Println("ℹ️ FCM not configured (push disabled)")
	}

	// 저장소와 서비스 조립
	directory := store.NewDirectory(db, presenceManager)
	roomStore := store.NewRoomStore(db)
	mailbox := store.NewMailbox(db)
	chatLog := store.NewChatLog(db)
	membership := store.NewMembership(db)

	fanout := service.NewCallFanout(membership)
	roomManager := service.NewRoomManager(roomStore, directory, fanout, sender)
	signaling := service.NewSignalingService(mailbox, chatLog, directory)

	return &Server{
		app:           app,
		cfg:           cfg,
		db:            db,
		authHandler:   handler.NewAuthHandler(db, jwtManager, googleAuth, cfg.Auth.SecureCookie),
		userHandler:   handler.NewUserHandler(db, directory),
		callHandler:   handler.NewCallHandler(roomManager),
		signalHandler: handler.NewSignalHandler(signaling),
		healthHandler: handler.NewHealthHandler(db, presenceManager),
		jwtManager:    jwtManager,
	}
}

// SetupMiddleware 미들웨어 설정
func (s *Server) SetupMiddleware() {
	// 패닉 복구
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// 로깅
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Seoul",
	}))

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
}

// SetupRoutes 라우트 설정
func (s *Server) SetupRoutes() {
	// 헬스체크 엔드포인트
	s.app.Get("/health", s.healthHandler.Check)
	s.app.Get("/health/live", s.healthHandler.Liveness)
	s.app.Get("/health/ready", s.healthHandler.Readiness)

	// Rate Limiter 설정 (인증 엔드포인트용 - Brute Force 방지)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,              // 최대 10회
		Expiration: 1 * time.Minute, // 1분당
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() // IP 기반 제한
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	// Auth 라우트 그룹
	authGroup := s.app.Group("/auth")
	authGroup.Post("/google", authLimiter, s.authHandler.GoogleLogin)
	authGroup.Post("/refresh", authLimiter, s.authHandler.RefreshToken)
	authGroup.Post("/logout", auth.AuthMiddleware(s.jwtManager), s.authHandler.Logout)
	authGroup.Get("/me", auth.AuthMiddleware(s.jwtManager), s.authHandler.GetMe)

	// User 라우트 그룹 (인증 필요)
	userGroup := s.app.Group("/api/users", auth.AuthMiddleware(s.jwtManager))
	userGroup.Get("/profile", s.userHandler.GetProfile)
	userGroup.Put("/status", s.userHandler.UpdateOnlineStatus)
	userGroup.Put("/device", s.userHandler.RegisterDevice)
	userGroup.Get("/search", s.userHandler.SearchUsers)

	// Call 라우트 그룹 (인증 필요)
	callGroup := s.app.Group("/api/call", auth.AuthMiddleware(s.jwtManager))
	callGroup.Post("/make", s.callHandler.MakeACall)
	callGroup.Post("/make-mm", s.callHandler.MakeMMCall)
	callGroup.Post("/call-group-team", s.callHandler.CallGroupOrTeam)
	callGroup.Get("/room/:id", s.callHandler.Room)
	callGroup.Get("/multi-room/:token", s.callHandler.MultiCallRoom)
	callGroup.Get("/mm-room/:token", s.callHandler.MMCallRoom)
	callGroup.Get("/participant/:id", s.callHandler.GetParticipant)
	callGroup.Get("/ignore/:id", s.callHandler.Ignore)

	// Signaling 라우트 그룹 (인증 필요, 폴링)
	signalGroup := s.app.Group("/api/signal", auth.AuthMiddleware(s.jwtManager))
	signalGroup.Post("/sdp", s.signalHandler.PostSDP)
	signalGroup.Get("/sdp", s.signalHandler.GetSDP)
	signalGroup.Post("/ice", s.signalHandler.PostICE)
	signalGroup.Get("/ice", s.signalHandler.GetICE)
	signalGroup.Post("/message", s.signalHandler.SaveMessage)
}

// Start 서버 시작 (graceful shutdown 포함)
func (s *Server) Start() error {
	// Graceful Shutdown 설정
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Call Signaling Relay starting on %s", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown 서버 종료
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/automart/internal/assistant"
	"github.com/thereayou/automart/internal/config"
	"github.com/thereayou/automart/internal/database"
	"github.com/thereayou/automart/internal/handlers"
	"github.com/thereayou/automart/internal/mailer"
	"github.com/thereayou/automart/internal/middleware"
	ws "github.com/thereayou/automart/internal/websocket"
	"github.com/thereayou/automart/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *ws.Hub

	cfg    *config.Config
	log    *slog.Logger
	bridge *ws.RedisBridge
}

func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	dbConn := &database.Database{}
	if err := dbConn.Connect(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("postgres connect failed: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	blacklist := middleware.NewRedisBlacklist(rdb)

	hub := ws.NewHub(log)
	var bridge *ws.RedisBridge
	if cfg.ChatBridge {
		bridge = ws.NewRedisBridge(rdb, hub, log)
		hub.SetPublisher(bridge)
	}

	smtp := mailer.NewSMTPSender(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPass)
	var notifier mailer.Sender
	if cfg.TelegramBotToken != "" {
		bot, err := mailer.NewTelegramBot(cfg.TelegramBotToken)
		if err != nil {
			log.Warn("telegram bot disabled", "err", err)
		} else {
			notifier = mailer.NewTelegramNotifier(bot, cfg.TelegramChatID)
		}
	}

	gemini := assistant.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	if !gemini.Configured() {
		log.Warn("GEMINI_API_KEY is not set, /api/chat will answer 500")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	APIEndpoints(router, &Handlers{
		Auth:      handlers.NewAuthHandler(dbConn, jwtMgr, blacklist, log),
		User:      handlers.NewUserHandler(dbConn),
		Car:       handlers.NewCarHandler(dbConn, log),
		Wishlist:  handlers.NewWishlistHandler(dbConn, log),
		Room:      handlers.NewRoomHandler(dbConn, hub),
		Contact:   handlers.NewContactHandler(smtp, notifier, log),
		Assistant: handlers.NewAssistantHandler(assistant.New(gemini, dbConn), log),
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins, log),
		Protect:   middleware.AuthMiddleware(jwtMgr, blacklist),
		ProtectWS: middleware.WSAuthMiddleware(jwtMgr, blacklist),
	})

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		cfg:        cfg,
		log:        log,
		bridge:     bridge,
	}, nil
}

// Run обслуживает HTTP до SIGINT/SIGTERM
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.Hub.Run()
	defer s.Hub.Stop()

	if s.bridge != nil {
		go func() {
			if err := s.bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("chat bridge stopped", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "port", s.cfg.Port, "env", s.cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return s.Redis.Close()
}

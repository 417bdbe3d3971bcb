package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	"github.com/khaledelhady44/The-boy-who-lived/internal/config"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/gateway"
	"github.com/khaledelhady44/The-boy-who-lived/internal/handler"
	"github.com/khaledelhady44/The-boy-who-lived/internal/infrastructure/agent"
	infradb "github.com/khaledelhady44/The-boy-who-lived/internal/infrastructure/database"
	"github.com/khaledelhady44/The-boy-who-lived/internal/router"
	"github.com/khaledelhady44/The-boy-who-lived/internal/usecase"
	"github.com/khaledelhady44/The-boy-who-lived/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "tbwl-server",
	Short: "Chat backend with a websocket session gateway",
	Long: `The-boy-who-lived server is an HTTP API built with the Hertz framework.
It provides user accounts, chat management and a per-chat websocket endpoint
that replays history and answers every message in character.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("config loaded successfully", "config_file", cfgFile)
	slog.Info("server starting...",
		"version", version,
		"config", cfgFile,
	)

	// Setup Hertz to use slog
	hertzLogger := logger.NewHertzSlogAdapter(slog.Default())
	hlog.SetLogger(hertzLogger)
	hlog.SetLevel(hlog.LevelDebug)

	// Initialize database
	db, err := infradb.NewClient(cfg.Database, slog.Default())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	slog.Info("database opened successfully", "path", cfg.Database.Path, "in_memory", cfg.Database.InMemory)

	// Initialize user components
	userRepo := infradb.NewUserRepository(db)
	userUsecase := usecase.NewUserUsecase(userRepo, slog.Default())
	userHandler := handler.NewUserHandler(userUsecase, cfg.JWT.Secret, cfg.JWT.Timeout, slog.Default())

	slog.Info("user module initialized")

	// Initialize chat components
	chatRepo := infradb.NewChatRepository(db)
	messageRepo := infradb.NewMessageRepository(db)
	chatUsecase := usecase.NewChatUsecase(chatRepo, messageRepo, cfg.Gateway.ChatsListLimit, slog.Default())
	chatHandler := handler.NewChatHandler(chatUsecase, slog.Default())

	// Initialize the reply generator
	var generator domain.ReplyGenerator
	switch cfg.Agent.Mode {
	case "remote":
		generator, err = agent.NewRemoteGenerator(cfg.Agent.BaseURL, cfg.Agent.Timeout, slog.Default())
		if err != nil {
			slog.Error("failed to create remote generator", "error", err)
			os.Exit(1)
		}
		slog.Info("reply generator initialized", "mode", "remote", "base_url", cfg.Agent.BaseURL)
	default:
		generator = agent.NewScriptedGenerator(slog.Default())
		slog.Info("reply generator initialized", "mode", "scripted")
	}

	// Initialize the websocket gateway
	registry := gateway.NewRegistry()
	gw := gateway.New(
		registry,
		chatUsecase,
		messageRepo,
		generator,
		userHandler,
		gateway.Options{
			SendBufferSize: cfg.Gateway.SendBufferSize,
			MaxMessageLen:  cfg.Gateway.MaxMessageLen,
		},
		slog.Default(),
	)
	wsHandler := handler.NewWSHandler(gw, slog.Default())

	slog.Info("gateway initialized",
		"send_buffer_size", cfg.Gateway.SendBufferSize,
		"max_message_len", cfg.Gateway.MaxMessageLen,
	)

	healthHandler := handler.NewHealthHandler(db)

	// Create Hertz server with performance optimization
	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	// Setup routes
	router.Setup(h, userHandler, chatHandler, wsHandler, healthHandler)

	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	// Graceful shutdown
	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	// Close database
	infradb.Close(db, slog.Default())

	slog.Info("server stopped gracefully")
}

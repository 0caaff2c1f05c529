package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"studentmart/config"
	"studentmart/database"
	"studentmart/handlers"
	"studentmart/logger"
	"studentmart/realtime"
	"studentmart/routes"
	"studentmart/services"
	"studentmart/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		panic(err)
	}

	logger.Log.Info("🚀 starting StudentMart backend")

	// ===== CONNECT TO MONGODB WITH RETRY =====
	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase); err != nil {
			dbErr = err
			logger.Log.Warnw("MongoDB connection attempt failed", "attempt", i, "err", err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		logger.Log.Fatalw("failed to connect to MongoDB", "err", dbErr)
	}
	defer func() {
		if err := database.DisconnectMongo(); err != nil {
			logger.Log.Warnw("mongo disconnect failed", "err", err)
		}
	}()

	// ===== WIRING =====
	users := store.NewUserDirectory(database.Users)
	products := store.NewProductCatalog(database.Products)
	messages := store.NewMongoMessages(database.Messages, users, products)

	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	handlers.SetMessageStore(messages)
	handlers.SetHub(hub)
	handlers.SetMailer(services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom))
	handlers.SetPaystack(services.NewPaystack(cfg.PaystackSecretKey))
	handlers.SetClientURL(cfg.ClientURL)
	handlers.SetVAPIDKeys(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, "mailto:"+cfg.EmailFrom)

	// ===== ROUTER =====
	gin.SetMode(cfg.GinMode)
	router := routes.SetupRouter(cfg.AllowedOrigins)

	router.GET("/ws", func(c *gin.Context) {
		realtime.Handler(hub)(c.Writer, c.Request)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Infow("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalw("server error", "err", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("🛑 shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnw("forced shutdown", "err", err)
	}

	logger.Log.Info("👋 server stopped gracefully")
}

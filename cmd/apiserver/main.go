package main

// @title           Checkout API
// @version         1.0
// @description     订单、支付、退款与结算后端 API
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@checkout.example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oip/checkout/internal/app/config"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化应用（HTTP Engine，可选的回调 Consumer）
	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	// 3. 创建 HTTP Server
	addr := fmt.Sprintf(":%s", cfg.GetServerPort())
	server := &http.Server{
		Addr:              addr,
		Handler:           app.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 4. 启动 Consumer（配置了 lmstfy 时）
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	consumerErrChan := make(chan error, 1)
	consumerDone := make(chan struct{})

	if app.CallbackConsumer != nil {
		go func() {
			defer close(consumerDone)
			app.Logger.Info("Starting callback consumer", "queue", cfg.Lmstfy.CallbackQueue)
			consumerErrChan <- app.CallbackConsumer.Start(consumerCtx)
		}()
	} else {
		close(consumerDone)
	}

	// 5. 启动 HTTP Server
	serverErrChan := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting HTTP server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 6. 优雅停机
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		app.Logger.Info("Received shutdown signal, gracefully shutting down")
	case err := <-serverErrChan:
		app.Logger.Error("HTTP server error", "error", err)
	case err := <-consumerErrChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			app.Logger.Error("Consumer error", "error", err)
		}
	}

	gracefulShutdown(app, server, cancelConsumer, consumerDone)
	app.Logger.Info("Application stopped")
}

// gracefulShutdown 先停止 Consumer（等待处理中的消息完成），再停止 HTTP Server
func gracefulShutdown(app *App, server *http.Server, cancelConsumer context.CancelFunc, consumerDone <-chan struct{}) {
	app.Logger.Info("Stopping consumer")
	cancelConsumer()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		app.Logger.Warn("Consumer did not stop in time")
	}

	app.Logger.Info("Stopping HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		app.Logger.Error("HTTP server shutdown error", "error", err)
		return
	}
	app.Logger.Info("HTTP server stopped gracefully")
}

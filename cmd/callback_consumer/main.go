package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"oip/checkout/internal/app/config"
	"oip/checkout/internal/app/consumer"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/modules/mdaudit"
	"oip/checkout/internal/app/domains/modules/mdguard"
	"oip/checkout/internal/app/domains/modules/mdledger"
	"oip/checkout/internal/app/domains/modules/mdnotify"
	"oip/checkout/internal/app/domains/modules/mdorder"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/domains/repo/rporderlog"
	"oip/checkout/internal/app/domains/repo/rppayment"
	"oip/checkout/internal/app/domains/repo/rptx"
	"oip/checkout/internal/app/domains/services/svcallback"
	"oip/checkout/internal/app/domains/services/svorder"
	"oip/checkout/internal/app/infra/mq/lmstfy"
	"oip/checkout/internal/app/infra/persistence/mysql"
	"oip/checkout/internal/app/infra/persistence/redis"
	"oip/checkout/internal/app/pkg/logger"
	"oip/checkout/internal/app/pkg/metrics"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateConsumer(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化日志
	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	appLogger.Info("Starting callback consumer...")

	// 3. 初始化基础设施组件
	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer mysql.Close(db)
	appLogger.Info("Database connected")

	// 支付结果同样广播到 Redis，API 进程中的 Smart Wait 才能被唤醒
	redisClient, err := redis.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}
	defer redisClient.Close()
	appLogger.Info("Redis connected")

	lmstfyClient := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	appLogger.Info("Lmstfy client initialized", "namespace", lmstfyClient.Namespace())

	metrics.Register()

	// 4. 初始化 Module / Service 层
	orderModule := mdorder.NewOrderModule(rporder.NewOrderRepository(db))
	guard, err := mdguard.NewGuard(mdguard.PolicyFromConfig(
		cfg.Guard.ServiceName,
		cfg.Guard.DefaultOrderType,
		cfg.Guard.BlockedOrderTypes,
	))
	if err != nil {
		log.Fatalf("Failed to init order type guard: %v", err)
	}

	bus := events.NewBus(appLogger)
	bus.Subscribe(mdnotify.NewNotifyModule(
		mdnotify.NewRedisBroker(redisClient),
		orderModule,
		cfg.Redis.EventChannelPrefix,
		appLogger,
	))

	orderService := svorder.NewOrderService(
		orderModule,
		mdledger.NewLedgerModule(rppayment.NewPaymentRepository(db)),
		mdaudit.NewAuditModule(rporderlog.NewOrderLogRepository(db)),
		guard,
		rptx.NewTxManager(db),
		bus,
		appLogger,
	)
	callbackService := svcallback.NewCallbackService(orderService, appLogger)

	// 5. 初始化 Consumer
	callbackConsumer := consumer.NewCallbackConsumer(
		lmstfyClient,
		callbackService,
		consumer.Config{
			QueueName:    cfg.Lmstfy.CallbackQueue,
			Threads:      cfg.Lmstfy.ConsumerThreads,
			Timeout:      cfg.Lmstfy.Timeout,
			TTR:          cfg.Lmstfy.TTR,
			ErrorBackoff: cfg.Lmstfy.ErrorBackoff,
		},
		appLogger,
	)

	// 6. 启动消费循环，收到信号后等待处理中的消息完成再退出
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- callbackConsumer.Start(ctx)
	}()

	select {
	case <-sigChan:
		appLogger.Info("Received shutdown signal, stopping consumer...", "inflight", callbackConsumer.Inflight())
		cancel()
		<-errChan
		appLogger.Info("Consumer stopped gracefully")
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Consumer stopped with error", "error", err)
			os.Exit(1)
		}
	}
}

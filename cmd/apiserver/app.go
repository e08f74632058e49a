package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

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
	"oip/checkout/internal/app/domains/repo/rpsettlement"
	"oip/checkout/internal/app/domains/repo/rptx"
	"oip/checkout/internal/app/domains/services/svcallback"
	"oip/checkout/internal/app/domains/services/svorder"
	"oip/checkout/internal/app/domains/services/svsettlement"
	"oip/checkout/internal/app/infra/mq/lmstfy"
	"oip/checkout/internal/app/infra/persistence/mysql"
	"oip/checkout/internal/app/infra/persistence/redis"
	"oip/checkout/internal/app/pkg/logger"
	"oip/checkout/internal/app/pkg/metrics"
	"oip/checkout/internal/app/server/handlers/order"
	"oip/checkout/internal/app/server/handlers/settlement"
	"oip/checkout/internal/app/server/routers"
)

// App 应用依赖集合
type App struct {
	Engine           *gin.Engine
	CallbackConsumer *consumer.CallbackConsumer // 未配置 lmstfy 时为 nil
	Logger           logger.Logger
}

// InitializeApp 按依赖顺序组装应用，返回的 cleanup 释放数据库与 Redis 连接
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger failed: %w", err)
	}
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. 基础设施
	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		return nil, nil, err
	}
	appLogger.Info("Database connected")

	redisClient, err := redis.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = mysql.Close(db)
		return nil, nil, err
	}
	appLogger.Info("Redis connected")

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Warn("close redis failed", "error", err)
		}
		if err := mysql.Close(db); err != nil {
			appLogger.Warn("close mysql failed", "error", err)
		}
	}

	metrics.Register()

	// 2. Repository / Module
	orderModule := mdorder.NewOrderModule(rporder.NewOrderRepository(db))
	ledger := mdledger.NewLedgerModule(rppayment.NewPaymentRepository(db))
	audit := mdaudit.NewAuditModule(rporderlog.NewOrderLogRepository(db))

	guard, err := mdguard.NewGuard(mdguard.PolicyFromConfig(
		cfg.Guard.ServiceName,
		cfg.Guard.DefaultOrderType,
		cfg.Guard.BlockedOrderTypes,
	))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init order type guard failed: %w", err)
	}

	// 3. 事件：提交后广播到 Redis，供 Smart Wait 订阅
	bus := events.NewBus(appLogger)
	notifier := mdnotify.NewNotifyModule(
		mdnotify.NewRedisBroker(redisClient),
		orderModule,
		cfg.Redis.EventChannelPrefix,
		appLogger,
	)
	bus.Subscribe(notifier)

	// 4. Service
	orderService := svorder.NewOrderService(
		orderModule,
		ledger,
		audit,
		guard,
		rptx.NewTxManager(db),
		bus,
		appLogger,
		svorder.WithNumberRetryLimit(cfg.Order.NumberRetryLimit),
	)
	settlementService := svsettlement.NewSettlementService(rpsettlement.NewSettlementRepository(db), appLogger)

	// 5. Handler / Router
	engine := routers.SetupRoutes(
		order.NewOrderHandler(orderService, notifier, appLogger),
		settlement.NewSettlementHandler(settlementService, appLogger),
		healthChecker(db, redisClient),
		appLogger,
	)

	app := &App{
		Engine: engine,
		Logger: appLogger,
	}

	// 6. 回调 Consumer（可选，也可以通过 cmd/callback_consumer 独立部署）
	if cfg.Lmstfy.Host != "" && cfg.Lmstfy.CallbackQueue != "" {
		app.CallbackConsumer = consumer.NewCallbackConsumer(
			lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token),
			svcallback.NewCallbackService(orderService, appLogger),
			consumerConfig(cfg.Lmstfy),
			appLogger,
		)
	}

	return app, cleanup, nil
}

func consumerConfig(c config.LmstfyConfig) consumer.Config {
	return consumer.Config{
		QueueName:    c.CallbackQueue,
		Threads:      c.ConsumerThreads,
		Timeout:      c.Timeout,
		TTR:          c.TTR,
		ErrorBackoff: c.ErrorBackoff,
	}
}

func healthChecker(db *gorm.DB, redisClient *redis.PubSubClient) routers.HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("mysql: %w", err)
		}
		if err := redisClient.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
}

package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oip/checkout/internal/app/pkg/logger"
	"oip/checkout/internal/app/server/handlers/order"
	"oip/checkout/internal/app/server/handlers/settlement"
	"oip/checkout/internal/app/server/middlewares"
)

// HealthChecker 依赖健康检查
type HealthChecker func() error

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	orderHandler *order.OrderHandler,
	settlementHandler *settlement.SettlementHandler,
	health HealthChecker,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.Trace(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unavailable",
					"service": "checkout",
					"message": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "checkout",
			"message": "Service is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
			orders.GET("/:id/logs", orderHandler.Logs)
			orders.POST("/:id/payments", orderHandler.InitiatePayment)
			orders.GET("/:id/payments", orderHandler.ListPayments)
			orders.GET("/:id/payments/wait", orderHandler.WaitPayment)
			orders.POST("/:id/payments/complete", orderHandler.CompletePayment)
			orders.POST("/:id/payments/fail", orderHandler.FailPayment)
			orders.POST("/:id/refund", orderHandler.Refund)
			orders.POST("/:id/cancel", orderHandler.Cancel)
		}

		v1.GET("/order-numbers/:number", orderHandler.GetByNumber)
		v1.GET("/buyers/:id/orders", orderHandler.ListByBuyer)

		settlements := v1.Group("/settlements")
		{
			settlements.GET("/orders", settlementHandler.Orders)
			settlements.GET("/summary", settlementHandler.Summary)
		}
	}

	return r
}

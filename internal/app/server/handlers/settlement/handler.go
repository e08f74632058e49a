package settlement

import (
	"github.com/gin-gonic/gin"

	"oip/checkout/internal/app/domains/apimodel/request"
	"oip/checkout/internal/app/domains/apimodel/response"
	"oip/checkout/internal/app/domains/services/svsettlement"
	"oip/checkout/internal/app/pkg/ginx"
	"oip/checkout/internal/app/pkg/logger"
)

// SettlementHandler 结算 HTTP 处理器（只读）
type SettlementHandler struct {
	settlementService *svsettlement.SettlementService
	logger            logger.Logger
}

// NewSettlementHandler 创建结算处理器实例
func NewSettlementHandler(settlementService *svsettlement.SettlementService, logger logger.Logger) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		logger:            logger,
	}
}

// Orders 结算目标订单，按支付时间升序
// GET /api/v1/settlements/orders?period_start=2024-03-01T00:00:00Z&period_end=2024-03-31T23:59:59Z
func (h *SettlementHandler) Orders(c *gin.Context) {
	var q request.SettlementQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	filter := q.ToFilter()
	orders, err := h.settlementService.FindSettlementTargetOrders(c.Request.Context(), q.PeriodStart, q.PeriodEnd, &filter)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "find settlement orders failed", "error", err)
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, &response.SettlementOrdersResponse{
		PeriodStart: q.PeriodStart.UTC(),
		PeriodEnd:   q.PeriodEnd.UTC(),
		Count:       len(orders),
		Orders:      response.FromOrderEntities(orders),
	})
}

// Summary 结算汇总，group_by 可选 orderType / supplierId / partnerId
// GET /api/v1/settlements/summary?period_start=...&period_end=...&group_by=orderType
func (h *SettlementHandler) Summary(c *gin.Context) {
	var q request.SettlementQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	summary, err := h.settlementService.GetSettlementSummary(c.Request.Context(), q.ToSummaryParams())
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "settlement summary failed", "error", err)
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromSettlementSummary(summary))
}

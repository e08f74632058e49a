package order

import (
	"github.com/gin-gonic/gin"

	"oip/checkout/internal/app/domains/apimodel/request"
	"oip/checkout/internal/app/domains/apimodel/response"
	"oip/checkout/internal/app/pkg/ginx"
)

// Refund 退款，amount 为空时全额退款
// POST /api/v1/orders/:id/refund
func (h *OrderHandler) Refund(c *gin.Context) {
	var req request.RefundRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.orderService.RefundOrder(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.fail(c, "refund order failed", err)
		return
	}

	ginx.Success(c, &response.PaymentResultResponse{
		Order:   response.FromOrderEntity(result.Order),
		Payment: response.FromPaymentEntity(result.Payment),
	})
}

// Cancel 取消未支付订单
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req request.CancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.fail(c, "cancel order failed", err)
		return
	}
	ginx.Success(c, response.FromOrderEntity(order))
}

package order

import (
	"github.com/gin-gonic/gin"

	"oip/checkout/internal/app/domains/apimodel/request"
	"oip/checkout/internal/app/domains/apimodel/response"
	"oip/checkout/internal/app/pkg/ginx"
)

// Get godoc
// @Summary      获取订单详情
// @Tags         orders
// @Produce      json
// @Param        id path string true "订单ID（UUID）"
// @Success      200 {object} ginx.Response{data=response.OrderResponse} "查询成功"
// @Failure      404 {object} ginx.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get order failed", err)
		return
	}
	ginx.Success(c, response.FromOrderEntity(order))
}

// GetByNumber 根据订单号查询
// GET /api/v1/order-numbers/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.orderService.FindByOrderNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.fail(c, "get order by number failed", err)
		return
	}
	ginx.Success(c, response.FromOrderEntity(order))
}

// List 订单列表（分页、过滤）
// GET /api/v1/orders?status=PAID&page=1&limit=20
func (h *OrderHandler) List(c *gin.Context) {
	var q request.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	page := q.ToPagination()
	orders, total, err := h.orderService.FindAll(c.Request.Context(), q.ToFilter(), page)
	if err != nil {
		h.fail(c, "list orders failed", err)
		return
	}

	ginx.Success(c, &response.OrderListResponse{
		Items: response.FromOrderEntities(orders),
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

// ListByBuyer 买家订单列表
// GET /api/v1/buyers/:id/orders
func (h *OrderHandler) ListByBuyer(c *gin.Context) {
	var q request.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	page := q.ToPagination()
	orders, total, err := h.orderService.FindByBuyerID(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		h.fail(c, "list buyer orders failed", err)
		return
	}

	ginx.Success(c, &response.OrderListResponse{
		Items: response.FromOrderEntities(orders),
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

// Logs 订单审计日志，按时间倒序
// GET /api/v1/orders/:id/logs
func (h *OrderHandler) Logs(c *gin.Context) {
	logs, err := h.orderService.GetOrderLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get order logs failed", err)
		return
	}
	ginx.Success(c, response.FromOrderLogs(logs))
}

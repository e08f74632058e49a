package svorder

import (
	"context"
	"fmt"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/modules/mdguard"
	"oip/checkout/internal/app/domains/modules/mdorder"
	"oip/checkout/internal/app/pkg/errorx"
	"oip/checkout/internal/app/pkg/idgen"
	"oip/checkout/internal/app/pkg/metrics"
)

// CreateOrder 创建订单（完整业务流程）
// 1. 订单类型护栏校验，拒绝时不落库
// 2. 重新计算行小计与订单总额
// 3. 生成订单号，订单与 CREATED 日志在同一事务中写入
// 4. 订单号冲突时重新生成并重试，超过上限返回 ErrOrderNumberExhausted
// 5. 提交后发布 OrderCreated 事件
func (s *OrderService) CreateOrder(ctx context.Context, in *CreateOrderInput) (*CreateOrderResult, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: input is required", errorx.ErrInvalidOrderInput)
	}
	now := s.now()

	decision, err := s.guard.Validate(etorder.OrderType(in.OrderType), mdguard.ValidationContext{
		Service: in.Caller,
		At:      now,
	})
	if err != nil {
		metrics.GuardRejectionsTotal.WithLabelValues(string(etorder.OrderType(in.OrderType).Normalize())).Inc()
		s.logger.WarnContext(ctx, "order type rejected by guard",
			"order_type", in.OrderType,
			"caller", in.Caller,
			"buyer_id", in.BuyerID,
		)
		return nil, err
	}
	if decision.Warning != nil {
		metrics.GuardDefaultTypeTotal.Inc()
		s.logger.WarnContext(ctx, "order type not specified, using default",
			"order_type", string(decision.OrderType),
			"caller", in.Caller,
			"buyer_id", in.BuyerID,
		)
	}

	performer := in.Performer
	if performer.ID == "" && performer.Type == "" {
		performer = etorderlog.Performer{ID: in.BuyerID, Type: etorderlog.PerformerBuyer}
	}

	orderID := idgen.NewID()
	var order *etorder.Order
	for attempt := 1; ; attempt++ {
		order, err = etorder.NewOrder(etorder.NewOrderParams{
			ID:              orderID,
			OrderNumber:     s.numbers.Next(now),
			OrderType:       decision.OrderType,
			BuyerID:         in.BuyerID,
			SellerID:        in.SellerID,
			SupplierID:      in.SupplierID,
			PartnerID:       in.PartnerID,
			Items:           in.Items,
			ShippingFee:     in.ShippingFee,
			Discount:        in.Discount,
			ShippingAddress: in.ShippingAddress,
			Memo:            in.Memo,
			Now:             now,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errorx.ErrInvalidOrderInput, err)
		}

		err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
			if err := s.orderModule.CreateOrder(txCtx, order); err != nil {
				return err
			}
			return s.audit.Record(txCtx, &etorderlog.Entry{
				OrderID:   order.ID,
				Action:    etorderlog.ActionCreated,
				NewStatus: string(order.Status),
				Performer: performer,
				Message:   "order created",
				Metadata: map[string]interface{}{
					"orderNumber": order.OrderNumber,
					"orderType":   string(order.OrderType),
					"totalAmount": order.TotalAmount.String(),
				},
				At: now,
			})
		})
		if err == nil {
			break
		}
		if !mdorder.IsDuplicateOrderNumber(err) {
			return nil, err
		}

		metrics.OrderNumberCollisionsTotal.Inc()
		s.logger.WarnContext(ctx, "order number collision, regenerating",
			"order_number", order.OrderNumber,
			"attempt", attempt,
		)
		if attempt >= s.retryLimit {
			return nil, fmt.Errorf("%w: %d attempts", errorx.ErrOrderNumberExhausted, attempt)
		}
	}

	metrics.OrdersCreatedTotal.WithLabelValues(string(order.OrderType)).Inc()
	s.logger.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"order_type", string(order.OrderType),
		"total_amount", order.TotalAmount.String(),
	)

	result := &CreateOrderResult{Order: order, Warning: decision.Warning}
	created := events.OrderCreated{
		Base:        events.Base{Order: order.ID, At: now},
		OrderNumber: order.OrderNumber,
		OrderType:   string(order.OrderType),
		BuyerID:     order.BuyerID,
		TotalAmount: order.TotalAmount,
	}
	if decision.Warning != nil {
		created.Warning = decision.Warning.Message
	}
	s.publish(ctx, created)

	return result, nil
}

package svorder

import (
	"context"

	"oip/checkout/internal/app/domains/entity/etorder"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/pkg/errorx"
	"oip/checkout/internal/app/pkg/metrics"
)

// RefundOrder 退款
// 1. 订单必须为已支付（paymentStatus == PAID）
// 2. 找到 SUCCESS 支付记录，找不到视为数据不一致
// 3. 金额默认为订单总额，部分退款需满足 0 < amount <= 支付金额
// 4. 支付记录与订单同时进入 REFUNDED，写一条 REFUNDED 日志
func (s *OrderService) RefundOrder(ctx context.Context, orderID string, in *RefundInput) (*PaymentResult, error) {
	if in == nil {
		in = &RefundInput{}
	}
	now := s.now()

	result := &PaymentResult{}
	err := s.mutate(ctx, "refund_order", orderID, func(txCtx context.Context) error {
		order, err := s.orderModule.LockOrder(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus != etorder.PaymentStatusPaid {
			return errorx.NewInvalidTransition(orderID, string(order.Status), "refund",
				"only paid orders can be refunded")
		}

		payment, err := s.ledger.FindSuccess(txCtx, orderID)
		if err != nil {
			return err
		}

		amount := order.TotalAmount
		if in.Amount != nil {
			amount = *in.Amount
		}
		if err := s.ledger.MarkRefunded(txCtx, payment, amount, in.Reason, now); err != nil {
			return err
		}

		expected := rporder.StateGuard{Status: order.Status, PaymentStatus: order.PaymentStatus}
		previous := order.Status
		if err := order.MarkRefunded(now); err != nil {
			return err
		}
		if err := s.orderModule.SaveState(txCtx, order, expected); err != nil {
			return err
		}

		if err := s.audit.Record(txCtx, &etorderlog.Entry{
			OrderID:        orderID,
			Action:         etorderlog.ActionRefunded,
			PreviousStatus: string(previous),
			NewStatus:      string(order.Status),
			Performer:      in.Performer.OrDefault(etorderlog.PerformerSystem),
			Message:        in.Reason,
			Metadata: map[string]interface{}{
				"paymentId":    payment.ID,
				"refundAmount": amount.String(),
				"reason":       in.Reason,
				"partial":      payment.IsPartialRefund(),
			},
			At: now,
		}); err != nil {
			return err
		}

		result.Order = order
		result.Payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := "full"
	if result.Payment.IsPartialRefund() {
		kind = "partial"
	}
	metrics.RefundsTotal.WithLabelValues(kind).Inc()
	s.logger.InfoContext(ctx, "order refunded",
		"order_id", orderID,
		"payment_id", result.Payment.ID,
		"refund_amount", result.Payment.RefundedAmount.String(),
		"kind", kind,
	)
	s.publish(ctx, events.OrderRefunded{
		Base:      events.Base{Order: orderID, At: now},
		PaymentID: result.Payment.ID,
		Amount:    *result.Payment.RefundedAmount,
		Reason:    in.Reason,
		Partial:   kind == "partial",
	})

	return result, nil
}

// CancelOrder 取消未支付订单: CREATED -> CANCELLED
func (s *OrderService) CancelOrder(ctx context.Context, orderID string, in *CancelInput) (*etorder.Order, error) {
	if in == nil {
		in = &CancelInput{}
	}
	now := s.now()

	var order *etorder.Order
	err := s.mutate(ctx, "cancel_order", orderID, func(txCtx context.Context) error {
		var err error
		order, err = s.orderModule.LockOrder(txCtx, orderID)
		if err != nil {
			return err
		}

		expected := rporder.StateGuard{Status: order.Status, PaymentStatus: order.PaymentStatus}
		previous := order.Status
		if err := order.Cancel(now); err != nil {
			return err
		}
		if err := s.orderModule.SaveState(txCtx, order, expected); err != nil {
			return err
		}

		return s.audit.Record(txCtx, &etorderlog.Entry{
			OrderID:        orderID,
			Action:         etorderlog.ActionCancelled,
			PreviousStatus: string(previous),
			NewStatus:      string(order.Status),
			Performer:      in.Performer.OrDefault(etorderlog.PerformerBuyer),
			Message:        in.Reason,
			Metadata: map[string]interface{}{
				"reason": in.Reason,
			},
			At: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order cancelled", "order_id", orderID, "reason", in.Reason)
	s.publish(ctx, events.OrderCancelled{
		Base:   events.Base{Order: orderID, At: now},
		Reason: in.Reason,
	})

	return order, nil
}

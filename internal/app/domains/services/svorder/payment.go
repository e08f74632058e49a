package svorder

import (
	"context"
	"fmt"

	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/events"
	"oip/checkout/internal/app/domains/repo/rporder"
	"oip/checkout/internal/app/pkg/errorx"
	"oip/checkout/internal/app/pkg/metrics"
)

// InitiatePayment 发起支付：创建 PENDING 支付记录并写 PAYMENT_INITIATED 日志
// 同一订单只保留一条 PENDING 记录，之前未完成的尝试标记为 FAILED
func (s *OrderService) InitiatePayment(ctx context.Context, orderID string, in *InitiatePaymentInput) (*etpayment.Payment, error) {
	if in == nil {
		in = &InitiatePaymentInput{}
	}
	now := s.now()

	var payment *etpayment.Payment
	err := s.mutate(ctx, "initiate_payment", orderID, func(txCtx context.Context) error {
		order, err := s.orderModule.LockOrder(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := order.EnsurePayable("initiate payment"); err != nil {
			return err
		}

		superseded, err := s.ledger.SupersedePending(txCtx, orderID, now)
		if err != nil {
			return err
		}

		payment, err = s.ledger.CreatePending(txCtx, orderID, in.PGProvider, order.TotalAmount, now)
		if err != nil {
			return err
		}

		supersededIDs := make([]string, 0, len(superseded))
		for _, p := range superseded {
			supersededIDs = append(supersededIDs, p.ID)
		}

		return s.audit.Record(txCtx, &etorderlog.Entry{
			OrderID:   orderID,
			Action:    etorderlog.ActionPaymentInitiated,
			NewStatus: string(etpayment.StatusPending),
			Performer: in.Performer.OrDefault(etorderlog.PerformerBuyer),
			Message:   "payment initiated",
			Metadata: map[string]interface{}{
				"paymentId":  payment.ID,
				"pgProvider": payment.PGProvider,
				"amount":     payment.Amount.String(),
				"superseded": supersededIDs,
			},
			At: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment initiated",
		"order_id", orderID,
		"payment_id", payment.ID,
		"pg_provider", payment.PGProvider,
	)
	s.publish(ctx, events.PaymentInitiated{
		Base:       events.Base{Order: orderID, At: now},
		PaymentID:  payment.ID,
		PGProvider: payment.PGProvider,
		Amount:     payment.Amount,
	})

	return payment, nil
}

// CompletePayment 支付成功回调（按支付键幂等）
// 1. 锁定订单
// 2. 支付键已处理过（SUCCESS/REFUNDED）：返回当前状态，不写日志
// 3. 校验订单仍待支付、金额一致
// 4. 取得（或自动创建）PENDING 支付记录，标记 SUCCESS
// 5. 订单 CREATED -> PAID，写一条 PAYMENT_SUCCESS 日志
func (s *OrderService) CompletePayment(ctx context.Context, orderID string, in *CompletePaymentInput) (*PaymentResult, error) {
	if in == nil || in.PaymentKey == "" {
		return nil, fmt.Errorf("%w: payment key is required", errorx.ErrInvalidOrderInput)
	}
	now := s.now()

	result := &PaymentResult{}
	err := s.mutate(ctx, "complete_payment", orderID, func(txCtx context.Context) error {
		order, err := s.orderModule.LockOrder(txCtx, orderID)
		if err != nil {
			return err
		}

		existing, err := s.ledger.FindByPaymentKey(txCtx, in.PaymentKey)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.OrderID != orderID {
				return errorx.NewInvalidTransition(orderID, string(order.Status), "complete payment",
					"payment key belongs to another order")
			}
			if existing.Status == etpayment.StatusSuccess || existing.Status == etpayment.StatusRefunded {
				result.Order = order
				result.Payment = existing
				result.Duplicate = true
				return nil
			}
		}

		if err := order.EnsurePayable("complete payment"); err != nil {
			return err
		}
		if in.Amount != nil && !in.Amount.Equal(order.TotalAmount) {
			return fmt.Errorf("%w: order_id=%s expected=%s got=%s",
				errorx.ErrPaymentAmountMismatch, orderID, order.TotalAmount.String(), in.Amount.String())
		}

		payment, created, err := s.ledger.EnsurePending(txCtx, orderID, in.PGProvider, order.TotalAmount, now)
		if err != nil {
			return err
		}

		approval := etpayment.Approval{
			PaymentKey:   in.PaymentKey,
			Method:       in.Method,
			CardMetadata: in.CardMetadata,
			ApprovedAt:   in.ApprovedAt.UTC(),
		}
		if err := s.ledger.MarkSuccess(txCtx, payment, approval, now); err != nil {
			return err
		}

		expected := rporder.StateGuard{Status: order.Status, PaymentStatus: order.PaymentStatus}
		previous := order.Status
		if err := order.MarkPaid(now); err != nil {
			return err
		}
		if err := s.orderModule.SaveState(txCtx, order, expected); err != nil {
			return err
		}

		if err := s.audit.Record(txCtx, &etorderlog.Entry{
			OrderID:        orderID,
			Action:         etorderlog.ActionPaymentSuccess,
			PreviousStatus: string(previous),
			NewStatus:      string(order.Status),
			Performer:      in.Performer.OrDefault(etorderlog.PerformerGateway),
			Message:        "payment completed",
			Metadata: map[string]interface{}{
				"paymentId":      payment.ID,
				"paymentKey":     payment.PaymentKey,
				"method":         payment.Method,
				"pgProvider":     payment.PGProvider,
				"amount":         payment.Amount.String(),
				"pendingCreated": created,
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

	if result.Duplicate {
		metrics.DuplicatePaymentCallbacksTotal.Inc()
		s.logger.InfoContext(ctx, "duplicate payment completion ignored",
			"order_id", orderID,
			"payment_key", in.PaymentKey,
			"order_status", string(result.Order.Status),
		)
		return result, nil
	}

	metrics.PaymentsCompletedTotal.Inc()
	s.logger.InfoContext(ctx, "payment completed",
		"order_id", orderID,
		"payment_id", result.Payment.ID,
		"payment_key", in.PaymentKey,
		"amount", result.Payment.Amount.String(),
	)
	s.publish(ctx, events.PaymentCompleted{
		Base:       events.Base{Order: orderID, At: now},
		PaymentID:  result.Payment.ID,
		PaymentKey: result.Payment.PaymentKey,
		Method:     result.Payment.Method,
		Amount:     result.Payment.Amount,
	})

	return result, nil
}

// FailPayment 支付失败回调
// 最新的 PENDING 支付记录（不存在时自动创建）标记为 FAILED，订单保持 CREATED 可重新支付
func (s *OrderService) FailPayment(ctx context.Context, orderID string, in *FailPaymentInput) (*etpayment.Payment, error) {
	if in == nil {
		in = &FailPaymentInput{}
	}
	now := s.now()

	var payment *etpayment.Payment
	err := s.mutate(ctx, "fail_payment", orderID, func(txCtx context.Context) error {
		order, err := s.orderModule.LockOrder(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := order.EnsurePayable("fail payment"); err != nil {
			return err
		}

		var created bool
		payment, created, err = s.ledger.EnsurePending(txCtx, orderID, in.PGProvider, order.TotalAmount, now)
		if err != nil {
			return err
		}

		previous := payment.Status
		if err := s.ledger.MarkFailed(txCtx, payment, in.Reason, now); err != nil {
			return err
		}

		return s.audit.Record(txCtx, &etorderlog.Entry{
			OrderID:        orderID,
			Action:         etorderlog.ActionPaymentFailed,
			PreviousStatus: string(previous),
			NewStatus:      string(payment.Status),
			Performer:      in.Performer.OrDefault(etorderlog.PerformerGateway),
			Message:        in.Reason,
			Metadata: map[string]interface{}{
				"paymentId":      payment.ID,
				"pgProvider":     payment.PGProvider,
				"reason":         in.Reason,
				"pendingCreated": created,
			},
			At: now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsFailedTotal.Inc()
	s.logger.InfoContext(ctx, "payment failed",
		"order_id", orderID,
		"payment_id", payment.ID,
		"reason", in.Reason,
	)
	s.publish(ctx, events.PaymentFailed{
		Base:      events.Base{Order: orderID, At: now},
		PaymentID: payment.ID,
		Reason:    in.Reason,
	})

	return payment, nil
}

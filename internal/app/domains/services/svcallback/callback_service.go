package svcallback

import (
	"context"
	"fmt"

	"oip/checkout/common/model"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/services/svorder"
	"oip/checkout/internal/app/pkg/errorutil"
	"oip/checkout/internal/app/pkg/logger"
)

// PaymentProcessor 订单支付流程（svorder.OrderService 实现）
type PaymentProcessor interface {
	CompletePayment(ctx context.Context, orderID string, in *svorder.CompletePaymentInput) (*svorder.PaymentResult, error)
	FailPayment(ctx context.Context, orderID string, in *svorder.FailPaymentInput) (*etpayment.Payment, error)
}

// CallbackService 回调处理服务
// 职责：
// 1. 处理支付网关发送的支付结果回调
// 2. 转换为 CompletePayment / FailPayment 调用
// 3. 事件广播（Smart Wait）由订单服务在提交后完成
type CallbackService struct {
	payments PaymentProcessor
	logger   logger.Logger
}

// NewCallbackService 创建回调服务实例
func NewCallbackService(payments PaymentProcessor, logger logger.Logger) *CallbackService {
	return &CallbackService{
		payments: payments,
		logger:   logger,
	}
}

// HandleCallback 处理支付回调
// 返回 error 时由调用方按 errorutil 判断是否重试
func (s *CallbackService) HandleCallback(ctx context.Context, callback *model.PaymentCallback) error {
	if err := callback.Validate(); err != nil {
		return errorutil.NonRetriable(fmt.Sprintf("invalid callback: %v", err))
	}

	ctx = logger.WithOrderID(ctx, callback.OrderID)
	s.logger.InfoContext(ctx, "Processing payment callback",
		"event_id", callback.EventID,
		"type", callback.Type,
		"payment_key", callback.PaymentKey,
	)

	performer := etorderlog.Performer{ID: callback.PGProvider, Type: etorderlog.PerformerGateway}

	switch callback.Type {
	case model.CallbackTypeApproved:
		result, err := s.payments.CompletePayment(ctx, callback.OrderID, &svorder.CompletePaymentInput{
			PaymentKey:   callback.PaymentKey,
			PGProvider:   callback.PGProvider,
			Method:       callback.Method,
			Amount:       callback.Amount,
			CardMetadata: toCardMetadata(callback.Card),
			ApprovedAt:   callback.ApprovedTime(),
			Performer:    performer,
		})
		if err != nil {
			return fmt.Errorf("complete payment failed: %w", err)
		}
		s.logger.InfoContext(ctx, "Payment callback processed",
			"event_id", callback.EventID,
			"duplicate", result.Duplicate,
		)

	case model.CallbackTypeFailed:
		if _, err := s.payments.FailPayment(ctx, callback.OrderID, &svorder.FailPaymentInput{
			PGProvider: callback.PGProvider,
			Reason:     callback.Reason,
			Performer:  performer,
		}); err != nil {
			return fmt.Errorf("fail payment failed: %w", err)
		}
		s.logger.InfoContext(ctx, "Payment failure callback processed",
			"event_id", callback.EventID,
			"reason", callback.Reason,
		)
	}

	return nil
}

func toCardMetadata(card *model.CardInfo) *etpayment.CardMetadata {
	if card == nil {
		return nil
	}
	return &etpayment.CardMetadata{
		Company:           card.Company,
		Number:            card.Number,
		InstallmentMonths: card.InstallmentMonths,
		ApproveNo:         card.ApproveNo,
		CardType:          card.CardType,
	}
}

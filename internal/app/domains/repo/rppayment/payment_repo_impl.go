package rppayment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"oip/checkout/common/entity"
	"oip/checkout/internal/app/domains/entity/etpayment"
	"oip/checkout/internal/app/domains/repo/rptx"
	"oip/checkout/internal/app/pkg/errorx"
)

// PaymentRepositoryImpl 支付记录仓储实现（MySQL）
type PaymentRepositoryImpl struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付记录仓储实例
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

// Create 创建支付记录
func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *etpayment.Payment) error {
	po, err := toGormModel(payment)
	if err != nil {
		return err
	}
	if err := rptx.DB(ctx, r.db).Create(po).Error; err != nil {
		if rptx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ErrDuplicatePaymentKey, payment.PaymentKey)
		}
		return err
	}
	return nil
}

// GetByPaymentKey 根据网关支付键查询
func (r *PaymentRepositoryImpl) GetByPaymentKey(ctx context.Context, paymentKey string) (*etpayment.Payment, error) {
	var po entity.Payment
	err := rptx.DB(ctx, r.db).Where("payment_key = ?", paymentKey).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainModel(&po)
}

// FindLatestByStatus 查询订单下指定状态的最新支付记录
func (r *PaymentRepositoryImpl) FindLatestByStatus(ctx context.Context, orderID string, status etpayment.PaymentStatus) (*etpayment.Payment, error) {
	var po entity.Payment
	err := rptx.DB(ctx, r.db).
		Where("order_id = ? AND status = ?", orderID, string(status)).
		Order("created_at DESC").Order("id DESC").
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainModel(&po)
}

// UpdateState 条件更新支付记录
func (r *PaymentRepositoryImpl) UpdateState(ctx context.Context, payment *etpayment.Payment, expected etpayment.PaymentStatus) error {
	po, err := toGormModel(payment)
	if err != nil {
		return err
	}

	result := rptx.DB(ctx, r.db).
		Model(&entity.Payment{}).
		Where("id = ? AND status = ?", payment.ID, string(expected)).
		Updates(map[string]interface{}{
			"status":          po.Status,
			"payment_key":     po.PaymentKey,
			"method":          po.Method,
			"card_metadata":   po.CardMetadata,
			"refunded_amount": po.RefundedAmount,
			"refund_reason":   po.RefundReason,
			"failure_reason":  po.FailureReason,
			"approved_at":     po.ApprovedAt,
			"failed_at":       po.FailedAt,
			"refunded_at":     po.RefundedAt,
			"updated_at":      po.UpdatedAt,
		})
	if result.Error != nil {
		if rptx.IsDuplicateKey(result.Error) {
			return fmt.Errorf("%w: %s", ErrDuplicatePaymentKey, payment.PaymentKey)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: payment_id=%s expected=%s",
			errorx.ErrConcurrentModification, payment.ID, expected)
	}
	return nil
}

// ListByOrder 查询订单下全部支付记录
func (r *PaymentRepositoryImpl) ListByOrder(ctx context.Context, orderID string) ([]*etpayment.Payment, error) {
	var pos []entity.Payment
	err := rptx.DB(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at DESC").Order("id DESC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	payments := make([]*etpayment.Payment, 0, len(pos))
	for i := range pos {
		payment, err := toDomainModel(&pos[i])
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// toGormModel 领域对象转换为 GORM 模型
func toGormModel(p *etpayment.Payment) (*entity.Payment, error) {
	cardJSON, err := json.Marshal(p.CardMetadata)
	if err != nil {
		return nil, err
	}

	po := &entity.Payment{
		ID:            p.ID,
		OrderID:       p.OrderID,
		PGProvider:    p.PGProvider,
		Amount:        p.Amount,
		Status:        string(p.Status),
		Method:        p.Method,
		CardMetadata:  datatypes.JSON(cardJSON),
		RefundReason:  p.RefundReason,
		FailureReason: p.FailureReason,
		ApprovedAt:    p.ApprovedAt,
		FailedAt:      p.FailedAt,
		RefundedAt:    p.RefundedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.PaymentKey != "" {
		key := p.PaymentKey
		po.PaymentKey = &key
	}
	if p.RefundedAmount != nil {
		po.RefundedAmount = decimal.NewNullDecimal(*p.RefundedAmount)
	}
	return po, nil
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *entity.Payment) (*etpayment.Payment, error) {
	p := &etpayment.Payment{
		ID:            po.ID,
		OrderID:       po.OrderID,
		PGProvider:    po.PGProvider,
		Amount:        po.Amount,
		Status:        etpayment.PaymentStatus(po.Status),
		Method:        po.Method,
		RefundReason:  po.RefundReason,
		FailureReason: po.FailureReason,
		ApprovedAt:    po.ApprovedAt,
		FailedAt:      po.FailedAt,
		RefundedAt:    po.RefundedAt,
		CreatedAt:     po.CreatedAt,
		UpdatedAt:     po.UpdatedAt,
	}
	if po.PaymentKey != nil {
		p.PaymentKey = *po.PaymentKey
	}
	if po.RefundedAmount.Valid {
		amount := po.RefundedAmount.Decimal
		p.RefundedAmount = &amount
	}
	if len(po.CardMetadata) > 0 && string(po.CardMetadata) != "null" {
		var card etpayment.CardMetadata
		if err := json.Unmarshal(po.CardMetadata, &card); err != nil {
			return nil, fmt.Errorf("unmarshal card metadata failed: %w", err)
		}
		p.CardMetadata = &card
	}
	return p, nil
}

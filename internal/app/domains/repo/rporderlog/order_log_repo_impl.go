package rporderlog

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"oip/checkout/common/entity"
	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/repo/rptx"
)

// OrderLogRepositoryImpl 审计日志仓储实现（MySQL）
type OrderLogRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderLogRepository 创建审计日志仓储实例
func NewOrderLogRepository(db *gorm.DB) OrderLogRepository {
	return &OrderLogRepositoryImpl{db: db}
}

// Append 追加日志
func (r *OrderLogRepositoryImpl) Append(ctx context.Context, entry *etorderlog.Entry) (*etorderlog.OrderLog, error) {
	po, err := toGormModel(entry)
	if err != nil {
		return nil, err
	}
	if err := rptx.DB(ctx, r.db).Create(po).Error; err != nil {
		return nil, err
	}
	return toDomainModel(po)
}

// ListByOrder 查询订单日志
func (r *OrderLogRepositoryImpl) ListByOrder(ctx context.Context, orderID string) ([]*etorderlog.OrderLog, error) {
	var pos []entity.OrderLog
	err := rptx.DB(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at DESC").Order("id DESC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	logs := make([]*etorderlog.OrderLog, 0, len(pos))
	for i := range pos {
		log, err := toDomainModel(&pos[i])
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

func toGormModel(e *etorderlog.Entry) (*entity.OrderLog, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, err
	}
	return &entity.OrderLog{
		OrderID:        e.OrderID,
		Action:         string(e.Action),
		PreviousStatus: optional(e.PreviousStatus),
		NewStatus:      optional(e.NewStatus),
		PerformedBy:    e.Performer.ID,
		PerformerType:  string(e.Performer.Type),
		Message:        e.Message,
		Metadata:       datatypes.JSON(metadata),
		CreatedAt:      e.At,
	}, nil
}

func toDomainModel(po *entity.OrderLog) (*etorderlog.OrderLog, error) {
	log := &etorderlog.OrderLog{
		ID:            po.ID,
		OrderID:       po.OrderID,
		Action:        etorderlog.Action(po.Action),
		PerformedBy:   po.PerformedBy,
		PerformerType: etorderlog.PerformerType(po.PerformerType),
		Message:       po.Message,
		CreatedAt:     po.CreatedAt,
	}
	if po.PreviousStatus != nil {
		log.PreviousStatus = *po.PreviousStatus
	}
	if po.NewStatus != nil {
		log.NewStatus = *po.NewStatus
	}
	if len(po.Metadata) > 0 && string(po.Metadata) != "null" {
		if err := json.Unmarshal(po.Metadata, &log.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal log metadata failed: %w", err)
		}
	}
	return log, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

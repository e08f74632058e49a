package mdaudit

import (
	"context"
	"time"

	"oip/checkout/internal/app/domains/entity/etorderlog"
	"oip/checkout/internal/app/domains/repo/rporderlog"
	"oip/checkout/internal/app/pkg/errorx"
)

// AuditModule 审计日志模块
// 每次状态变更追加一条不可变记录，必须与业务变更在同一事务中写入
type AuditModule struct {
	logRepo rporderlog.OrderLogRepository
}

// NewAuditModule 创建审计日志模块
func NewAuditModule(logRepo rporderlog.OrderLogRepository) *AuditModule {
	return &AuditModule{logRepo: logRepo}
}

// Record 追加审计日志
// 写入失败时返回错误，调用方事务整体回滚
func (m *AuditModule) Record(ctx context.Context, entry *etorderlog.Entry) error {
	e := *entry
	e.Performer = e.Performer.OrDefault(etorderlog.PerformerSystem)
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if _, err := m.logRepo.Append(ctx, &e); err != nil {
		return errorx.Persistence("append order log", err)
	}
	return nil
}

// ListByOrder 查询订单审计日志（最新在前）
func (m *AuditModule) ListByOrder(ctx context.Context, orderID string) ([]*etorderlog.OrderLog, error) {
	logs, err := m.logRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, errorx.Persistence("list order logs", err)
	}
	return logs, nil
}

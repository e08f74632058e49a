package rporderlog

import (
	"context"

	"oip/checkout/internal/app/domains/entity/etorderlog"
)

// OrderLogRepository 审计日志仓储接口，只提供追加与查询
type OrderLogRepository interface {
	// Append 追加一条日志，在调用方事务中执行
	Append(ctx context.Context, entry *etorderlog.Entry) (*etorderlog.OrderLog, error)

	// ListByOrder 查询订单日志，按时间倒序（同一时间按 ID 倒序）
	ListByOrder(ctx context.Context, orderID string) ([]*etorderlog.OrderLog, error)
}

package rptx

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器：业务变更与审计日志在同一事务内提交
type TxManager interface {
	// WithinTx 在事务中执行 fn；fn 返回 error 时整体回滚
	// 已处于事务中时直接复用外层事务
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormTxManager 基于 GORM 的事务管理器实现
type GormTxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) TxManager {
	return &GormTxManager{db: db}
}

// WithinTx 在事务中执行 fn
func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// DB 返回 Context 中的事务连接，没有事务时返回普通连接
// 仓储实现统一通过它获取 *gorm.DB，保证事务内的读写走同一连接
func DB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// InTx 当前 Context 是否处于事务中
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// IsDuplicateKey 判断是否为唯一键冲突
// 兼容 GORM 错误翻译、MySQL 1062 以及 SQLite（测试环境）的错误文本
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

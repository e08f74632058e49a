package idgen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 订单号格式固定为 ORD-日期(8位)-序列号(4位)，例如 ORD-20240101-0042
const (
	Prefix      = "ORD"
	maxSequence = 9999
)

// Generator 订单号生成器接口
type Generator interface {
	Next(now time.Time) string
}

// OrderNumberGenerator 按天递增的订单号生成器
// 每天的起始序列号随机，降低多实例同时写入时的碰撞概率；
// 碰撞由唯一索引兜底，调用方重新生成后重试
type OrderNumberGenerator struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	sequence int64  // 序列号 (0-9999)
	lastDay  string // 上次生成订单号的日期 (YYYYMMDD)
}

// NewOrderNumberGenerator 创建订单号生成器
func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next 生成下一个订单号
func (g *OrderNumberGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	day := now.Format("20060102")
	if day != g.lastDay {
		// 新的一天，随机选择起始序列号
		g.lastDay = day
		g.sequence = g.rnd.Int63n(maxSequence + 1)
	} else {
		g.sequence = (g.sequence + 1) % (maxSequence + 1)
	}

	return fmt.Sprintf("%s-%s-%04d", Prefix, day, g.sequence)
}

// NewID 生成实体ID (UUID)
func NewID() string {
	return uuid.New().String()
}

package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"oip/checkout/common/model"
	"oip/checkout/internal/app/infra/mq/lmstfy"
	"oip/checkout/internal/app/pkg/errorutil"
	"oip/checkout/internal/app/pkg/logger"
	"oip/checkout/internal/app/pkg/metrics"
)

// 消费结果（metrics label）
const (
	resultProcessed = "processed"
	resultRejected  = "rejected"
	resultRetry     = "retry"
	resultInvalid   = "invalid"
)

// MessageSource 消息源（lmstfy.Client 实现）
type MessageSource interface {
	Consume(queue string, timeout, ttr time.Duration) (*lmstfy.Message, error)
	Ack(queue, jobID string) error
}

// CallbackHandler 回调处理（svcallback.CallbackService 实现）
type CallbackHandler interface {
	HandleCallback(ctx context.Context, callback *model.PaymentCallback) error
}

// Config 消费者配置
type Config struct {
	QueueName    string        // 队列名称
	Threads      int           // 并发拉取协程数
	Timeout      time.Duration // 拉取消息超时
	TTR          time.Duration // Time-To-Run，未 ACK 的消息超时后重新投递
	ErrorBackoff time.Duration // 拉取出错后的退避时间
}

// CallbackConsumer 回调消费者
// 职责：
// 1. 从 lmstfy 队列消费支付网关回调
// 2. 解析消息并调用 CallbackService 处理
// 3. 处理成功或不可重试时 ACK，可重试错误交给 TTR 重新投递
type CallbackConsumer struct {
	source  MessageSource
	handler CallbackHandler
	cfg     Config
	logger  logger.Logger

	closing  *atomic.Bool
	inflight *atomic.Int64
	wg       sync.WaitGroup
}

// NewCallbackConsumer 创建回调消费者实例
func NewCallbackConsumer(source MessageSource, handler CallbackHandler, cfg Config, logger logger.Logger) *CallbackConsumer {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &CallbackConsumer{
		source:   source,
		handler:  handler,
		cfg:      cfg,
		logger:   logger,
		closing:  atomic.NewBool(false),
		inflight: atomic.NewInt64(0),
	}
}

// Start 启动消费循环，阻塞直到 ctx 取消且所有协程退出
func (c *CallbackConsumer) Start(ctx context.Context) error {
	c.logger.Info("Callback consumer started",
		"queue", c.cfg.QueueName,
		"threads", c.cfg.Threads,
		"timeout", c.cfg.Timeout.String(),
		"ttr", c.cfg.TTR.String(),
	)

	for i := 0; i < c.cfg.Threads; i++ {
		workerID := i
		c.wg.Add(1)
		go c.loop(ctx, workerID)
	}

	<-ctx.Done()
	c.closing.Store(true)
	c.wg.Wait()

	c.logger.Info("Callback consumer stopped")
	return nil
}

// Inflight 正在处理的消息数
func (c *CallbackConsumer) Inflight() int64 {
	return c.inflight.Load()
}

func (c *CallbackConsumer) loop(ctx context.Context, workerID int) {
	defer c.wg.Done()

	for !c.closing.Load() {
		if err := c.consumeOne(ctx); err != nil {
			c.logger.Warn("Failed to consume message", "worker", workerID, "error", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.ErrorBackoff):
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// consumeOne 消费一条消息
// 返回 error 仅表示队列交互失败（拉取或 ACK），需要退避
func (c *CallbackConsumer) consumeOne(ctx context.Context) error {
	msg, err := c.source.Consume(c.cfg.QueueName, c.cfg.Timeout, c.cfg.TTR)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}

	c.inflight.Inc()
	defer c.inflight.Dec()

	// 已拉取的消息处理完再退出
	msgCtx := logger.WithTraceID(context.WithoutCancel(ctx), uuid.NewString())
	c.logger.InfoContext(msgCtx, "Received callback message", "job_id", msg.ID)

	callback, err := parseMessage(msg.Data)
	if err != nil {
		// 解析失败，直接 ACK（避免死循环）
		c.logger.ErrorContext(msgCtx, "Failed to parse message", "job_id", msg.ID, "error", err)
		metrics.CallbackMessagesTotal.WithLabelValues(resultInvalid).Inc()
		return c.ack(msg)
	}

	if err := c.handler.HandleCallback(msgCtx, callback); err != nil {
		if errorutil.IsRetryable(err) {
			// 不 ACK，等待 TTR 超时后重新投递
			c.logger.WarnContext(msgCtx, "Callback will be redelivered",
				"job_id", msg.ID,
				"order_id", callback.OrderID,
				"error", err,
			)
			metrics.CallbackMessagesTotal.WithLabelValues(resultRetry).Inc()
			return nil
		}

		c.logger.ErrorContext(msgCtx, "Callback rejected",
			"job_id", msg.ID,
			"order_id", callback.OrderID,
			"error", err,
		)
		metrics.CallbackMessagesTotal.WithLabelValues(resultRejected).Inc()
		return c.ack(msg)
	}

	metrics.CallbackMessagesTotal.WithLabelValues(resultProcessed).Inc()
	return c.ack(msg)
}

func (c *CallbackConsumer) ack(msg *lmstfy.Message) error {
	if err := c.source.Ack(c.cfg.QueueName, msg.ID); err != nil {
		return fmt.Errorf("ack job %s: %w", msg.ID, err)
	}
	return nil
}

// parseMessage 解析消息数据
func parseMessage(data []byte) (*model.PaymentCallback, error) {
	var callback model.PaymentCallback
	if err := json.Unmarshal(data, &callback); err != nil {
		return nil, fmt.Errorf("unmarshal callback failed: %w", err)
	}
	if err := callback.Validate(); err != nil {
		return nil, err
	}
	return &callback, nil
}

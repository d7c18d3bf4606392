// Package mq 提供销售事件的消费能力。
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// SaleEventHandler 处理一条销售完成事件。
// 返回错误时消息以nack重新入队(仅首次投递),避免毒消息无限循环。
type SaleEventHandler func(ctx context.Context, event *SaleCompletedEvent) error

// Consumer RabbitMQ消费者
type Consumer struct {
	conn    *Connection
	queue   string
	handler SaleEventHandler
	logger  *zap.Logger
}

// NewConsumer 创建消费者实例
func NewConsumer(conn *Connection, queue string, handler SaleEventHandler, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{conn: conn, queue: queue, handler: handler, logger: logger}
}

// Run 拉起消费循环直到ctx取消,信道断开后退避重建。
func (c *Consumer) Run(ctx context.Context) {
	for {
		if err := c.consume(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Warn("consumer loop exited, retrying", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var event SaleCompletedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.logger.Error("failed to decode sale event, dropping", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler(ctx, &event); err != nil {
		c.logger.Error("failed to handle sale event",
			zap.Int64("sale_id", event.SaleID), zap.Error(err))
		// 首次失败重新入队,再次失败丢弃
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

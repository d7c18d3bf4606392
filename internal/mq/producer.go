// Package mq 提供销售事件的发布能力。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// SalePublisher 发布销售完成事件。
// 发布失败由调用方记录日志,不回滚已提交的业务数据。
type SalePublisher interface {
	PublishSaleCompleted(ctx context.Context, event *SaleCompletedEvent) error
}

// Producer RabbitMQ生产者
type Producer struct {
	conn     *Connection
	exchange string
	logger   *zap.Logger
}

// NewProducer 创建生产者实例
func NewProducer(conn *Connection, exchange string, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{conn: conn, exchange: exchange, logger: logger}
}

// PublishSaleCompleted 发布销售完成事件
func (p *Producer) PublishSaleCompleted(ctx context.Context, event *SaleCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sale event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, p.exchange, RoutingKeySaleCompleted, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish sale event: %w", err)
	}

	p.logger.Debug("sale completed event published", zap.Int64("sale_id", event.SaleID))
	return nil
}

// NopPublisher 在MQ禁用时使用的空实现。
type NopPublisher struct{}

func (NopPublisher) PublishSaleCompleted(ctx context.Context, event *SaleCompletedEvent) error {
	return nil
}

// Package mq 提供RabbitMQ连接管理。
package mq

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Connection 维护一条RabbitMQ连接与拓扑声明。
// 连接断开后由使用方按需重建,不做后台自动重连。
type Connection struct {
	url      string
	exchange string
	queue    string
	logger   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewConnection 建立连接并声明交换机与队列。
func NewConnection(url, exchange, queue string, logger *zap.Logger) (*Connection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Connection{
		url:      url,
		exchange: exchange,
		queue:    queue,
		logger:   logger,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(c.queue, RoutingKeySaleCompleted, c.exchange, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.logger.Info("rabbitmq connected", zap.String("exchange", c.exchange), zap.String("queue", c.queue))
	return nil
}

// Channel 打开一个新信道,连接已断开时先重建连接。
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		if err := c.connect(); err != nil {
			return nil, err
		}
		c.mu.Lock()
		conn = c.conn
		c.mu.Unlock()
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

// Close 关闭连接。
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}

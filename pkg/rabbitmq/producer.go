/**
 * @description
 * This package provides a producer for publishing operator alerts to
 * RabbitMQ. The connector keeps no transaction log, so a failed compensating
 * refund is unrecoverable in-process; the alert published here is what hands
 * the case to out-of-band reconciliation.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 * - github.com/shopspring/decimal: Decimal-exact alert amounts.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RefundAlert is published when a compensating credit failed after a debit.
// Amount and AccountID are the reconciliation handles for the operator.
type RefundAlert struct {
	TransferID string          `json:"transfer_id"`
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Publisher is the interface implemented by types that can publish alerts.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	PublishRefundAlert(ctx context.Context, exchange string, alert RefundAlert) error
	Close()
}

// AlertProducer holds the RabbitMQ connection and channel for publishing.
type AlertProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *zap.Logger
}

// AlertProducerFallback is a no-op publisher used when RabbitMQ is
// unavailable at startup. Alerts still land in the error log.
type AlertProducerFallback struct {
	Logger *zap.Logger
}

// NewAlertProducerFallback creates a no-op publisher that logs instead.
func NewAlertProducerFallback(logger *zap.Logger) *AlertProducerFallback {
	return &AlertProducerFallback{Logger: logger}
}

func (p *AlertProducerFallback) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.Logger.Warn("alert publish skipped: broker unavailable",
		zap.String("exchange", exchange),
		zap.String("routing_key", routingKey),
	)
	return nil
}

func (p *AlertProducerFallback) PublishRefundAlert(ctx context.Context, exchange string, alert RefundAlert) error {
	p.Logger.Warn("refund alert publish skipped: broker unavailable",
		zap.String("transfer_id", alert.TransferID),
		zap.String("account_id", alert.AccountID),
		zap.String("amount", alert.Amount.String()),
	)
	return nil
}

func (p *AlertProducerFallback) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewAlertProducer creates and returns a new AlertProducer.
func NewAlertProducer(amqpURL string, logger *zap.Logger) (*AlertProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Bounded dial timeout so startup does not hang indefinitely.
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &AlertProducer{conn: conn, channel: ch, logger: logger}, nil
}

// Publish sends a message to a durable topic exchange with a routing key.
func (p *AlertProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		p.logger.Warn("exchange declare failed; reopening channel",
			zap.String("exchange", exchange),
			zap.Error(err),
		)
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return chErr
		}
		p.channel = ch
		if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        jsonBody,
	}
	err = p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, publishing)
	if err != nil {
		p.logger.Warn("publish failed; reopening channel",
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		// One-shot retry on a fresh channel.
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return err
		}
		p.channel = ch
		if exErr := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); exErr != nil {
			return err
		}
		return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, publishing)
	}
	return nil
}

// PublishRefundAlert publishes a refund-failure reconciliation alert.
func (p *AlertProducer) PublishRefundAlert(ctx context.Context, exchange string, alert RefundAlert) error {
	return p.Publish(ctx, exchange, "transfer.refund.failed", alert)
}

// Close gracefully closes the channel and connection to RabbitMQ.
func (p *AlertProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

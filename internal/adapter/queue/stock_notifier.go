package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange = "storefront.stock"

	routingKeyPrefix = "stock."
)

var ErrPublishNacked = errors.New("broker did not confirm publish")

// Channel is the part of *amqp.Channel the notifier uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
}

type stockMessage struct {
	domain.StockSignal
	SentAt time.Time `json:"sent_at"`
}

// StockNotifier publishes stock signals to a topic exchange with routing keys
// stock.low_stock and stock.sold_out.
type StockNotifier struct {
	ch       Channel
	exchange string
	now      func() time.Time
}

var _ port.StockNotifier = (*StockNotifier)(nil)

// NewStockNotifier declares the exchange and switches the channel into confirm mode.
func NewStockNotifier(ch Channel, exchange string) (*StockNotifier, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &StockNotifier{
		ch:       ch,
		exchange: exchange,
		now:      time.Now,
	}, nil
}

func (n *StockNotifier) NotifyStock(ctx context.Context, signal domain.StockSignal) error {
	body, err := json.Marshal(stockMessage{
		StockSignal: signal,
		SentAt:      n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	confirmation, err := n.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		n.exchange,
		RoutingKey(signal.Kind),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    signal.ProductID.String(),
			Timestamp:    n.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	// nil when the channel is not in confirm mode
	if confirmation == nil {
		return nil
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait confirm: %w", err)
	}
	if !acked {
		return ErrPublishNacked
	}

	return nil
}

func RoutingKey(kind domain.StockSignalKind) string {
	return routingKeyPrefix + string(kind)
}

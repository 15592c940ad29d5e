package receipt

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	exchange   = "receipts"
	keyKitchen = "receipt.kitchen"
	keyBill    = "receipt.bill"
)

// Publisher delivers tickets to RabbitMQ, one durable queue per printer
// station: kitchen.q for the kitchen, bar.q for the bar's bill printer.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p := &Publisher{conn: conn, ch: ch}
	if err := p.declare(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) declare() error {
	if err := p.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := p.ch.QueueDeclare("kitchen.q", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := p.ch.QueueDeclare("bar.q", true, false, false, false, nil); err != nil {
		return err
	}
	if err := p.ch.QueueBind("kitchen.q", keyKitchen, exchange, false, nil); err != nil {
		return err
	}
	return p.ch.QueueBind("bar.q", keyBill, exchange, false, nil)
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) publish(ctx context.Context, key string, t Ticket) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    t.PrintedAt,
		Body:         body,
	})
}

func (p *Publisher) PrintKitchenTicket(ctx context.Context, t Ticket) error {
	return p.publish(ctx, keyKitchen, t)
}

func (p *Publisher) PrintBill(ctx context.Context, t Ticket) error {
	return p.publish(ctx, keyBill, t)
}

// LogPrinter writes tickets to the log, for terminals running without a
// broker.
type LogPrinter struct {
	Log *zap.Logger
}

func (l *LogPrinter) print(t Ticket) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	l.Log.Info("receipt",
		zap.String("header", t.Header),
		zap.String("table", t.TableNumber),
		zap.ByteString("ticket", body))
	return nil
}

func (l *LogPrinter) PrintKitchenTicket(_ context.Context, t Ticket) error { return l.print(t) }

func (l *LogPrinter) PrintBill(_ context.Context, t Ticket) error { return l.print(t) }

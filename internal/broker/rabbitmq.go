package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNacked: o broker recusou a mensagem (confirm negativo).
var ErrNacked = errors.New("broker: publish not acknowledged")

// Sink é o contrato mínimo de publicação; Publisher e Nop implementam.
type Sink interface {
	Publish(ctx context.Context, body []byte, headers amqp.Table) error
	Close() error
}

// fila durável, sem auto-delete; API e ws declaram igual
func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	return err
}

// dial abre conexão + canal e declara a fila; em erro fecha o que abriu.
func dial(uri, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("broker: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("broker: channel: %w", err)
	}
	if err := declareQueue(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("broker: declare %s: %w", queue, err)
	}
	return conn, ch, nil
}

func closeBoth(ch *amqp.Channel, conn *amqp.Connection) error {
	var errCh, errConn error
	if ch != nil {
		errCh = ch.Close()
	}
	if conn != nil {
		errConn = conn.Close()
	}
	return errors.Join(errCh, errConn)
}

// Publisher publica na fila pela exchange default, em modo confirm:
// Publish só retorna nil depois do ack do broker.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	// um canal AMQP não deve ser compartilhado entre publishes concorrentes
	mu sync.Mutex
}

func NewPublisher(uri, queue string) (*Publisher, error) {
	conn, ch, err := dial(uri, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = closeBoth(ch, conn)
		return nil, fmt.Errorf("broker: confirm mode: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Publish(ctx context.Context, body []byte, headers amqp.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conf, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key = nome da fila
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers:      headers,
		},
	)
	if err != nil {
		return err
	}
	ok, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNacked
	}
	return nil
}

func (p *Publisher) Close() error {
	return closeBoth(p.ch, p.conn)
}

// Nop descarta tudo: usado com EVENTS_ENABLED=false ou quando o Rabbit não sobe.
type Nop struct{}

func (Nop) Publish(context.Context, []byte, amqp.Table) error { return nil }
func (Nop) Close() error                                      { return nil }

// Consumer lê a fila de eventos com auto-ack; usado pelo serviço de websocket.
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
}

func NewConsumer(uri, queue, tag string, prefetch int) (*Consumer, error) {
	conn, ch, err := dial(uri, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = closeBoth(ch, conn)
		return nil, fmt.Errorf("broker: qos: %w", err)
	}
	deliveries, err := ch.Consume(queue, tag, true, false, false, false, nil)
	if err != nil {
		_ = closeBoth(ch, conn)
		return nil, fmt.Errorf("broker: consume: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, deliveries: deliveries}, nil
}

// Bodies entrega o corpo de cada mensagem; fecha quando a conexão cai ou em Close.
func (c *Consumer) Bodies() <-chan []byte {
	out := make(chan []byte)
	go func() {
		defer close(out)
		for d := range c.deliveries {
			out <- d.Body
		}
	}()
	return out
}

func (c *Consumer) Close() error {
	return closeBoth(c.ch, c.conn)
}

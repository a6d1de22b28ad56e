package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// exchangeName is the fanout exchange every terminal binds a queue to.
const exchangeName = "pos.events"

// Broadcaster delivers events to RabbitMQ asynchronously.  Publish only
// enqueues onto a buffered channel, so a slow or unreachable broker can
// never block or roll back the request that produced the event; a full
// buffer drops the event with a log line.  The dispatcher goroutine owns
// the connection and redials lazily after failures.
type Broadcaster struct {
	url    string
	events chan Event
	done   chan struct{}

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewBroadcaster starts a broadcaster dispatching to the given AMQP URL.
// buffer sizes the in-flight event queue.
func NewBroadcaster(url string, buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 256
	}
	b := &Broadcaster{
		url:    url,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// Publish enqueues an event for delivery.  It never blocks.
func (b *Broadcaster) Publish(ev Event) {
	select {
	case b.events <- ev:
	default:
		log.Printf("broadcast: buffer full, dropping %s event", ev.Type)
	}
}

// Close stops the dispatcher after draining already queued events.
func (b *Broadcaster) Close() {
	close(b.events)
	<-b.done
}

func (b *Broadcaster) run() {
	defer close(b.done)
	for ev := range b.events {
		if err := b.send(ev); err != nil {
			log.Printf("broadcast: publish %s failed: %v", ev.Type, err)
			b.reset()
		}
	}
	b.reset()
}

// ensureChannel dials the broker and declares the fanout exchange when no
// channel is open yet.  Durable so the exchange survives broker restarts.
func (b *Broadcaster) ensureChannel() error {
	if b.ch != nil {
		return nil
	}
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	b.conn = conn
	b.ch = ch
	return nil
}

func (b *Broadcaster) send(ev Event) error {
	if err := b.ensureChannel(); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.ch.PublishWithContext(ctx,
		exchangeName, // exchange
		ev.Type,      // routing key (ignored by fanout, useful in logs)
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (b *Broadcaster) reset() {
	if b.ch != nil {
		_ = b.ch.Close()
		b.ch = nil
	}
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}

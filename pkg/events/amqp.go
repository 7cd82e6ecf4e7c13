package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events to a durable RabbitMQ queue through the default exchange.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	logger  logrus.FieldLogger
	mu      sync.Mutex
}

// NewAMQPPublisher connects to url and declares queue.
func NewAMQPPublisher(url, queue string, logger logrus.FieldLogger) (p *AMQPPublisher, err error) {
	var conn *amqp.Connection
	conn, err = amqp.Dial(url)
	if err != nil {
		err = errors.Wrap(err, "failed to connect to RabbitMQ")
		return p, err
	}

	var ch *amqp.Channel
	ch, err = conn.Channel()
	if err != nil {
		conn.Close()
		err = errors.Wrap(err, "failed to open channel")
		return p, err
	}

	var q amqp.Queue
	q, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		err = errors.Wrapf(err, "failed to declare queue %s", queue)
		return p, err
	}

	logger.WithField("queue", q.Name).Info("Connected to RabbitMQ")

	p = &AMQPPublisher{conn: conn, channel: ch, queue: q.Name, logger: logger}
	return p, err
}

// Publish sends event as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) (err error) {
	var body []byte
	body, err = json.Marshal(event)
	if err != nil {
		err = errors.Wrap(err, "failed to encode event")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.At,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		err = errors.Wrapf(err, "failed to publish %s for job %s", event.Type, event.JobID)
		return err
	}

	p.logger.WithFields(logrus.Fields{"type": event.Type, "job_id": event.JobID}).Debug("Published event")
	return err
}

// Close shuts the channel and the connection.
func (p *AMQPPublisher) Close() (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Close()
	if p.conn != nil {
		connErr := p.conn.Close()
		if err == nil {
			err = connErr
		}
	}
	if err != nil {
		err = errors.Wrap(err, "failed to close RabbitMQ connection")
	}
	return err
}

// Package rabbitmq runs background jobs on a durable RabbitMQ queue.
//
// The job name travels in the message type and the JSON arguments in the
// body. Attempts are counted in a header: a failed job is republished with
// the counter bumped until the configured maximum is reached.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

const (
	// Backend labels metrics of the RabbitMQ queue
	Backend = "rabbitmq"

	contentTypeJSON = "application/json"
	consumerTag     = "job-worker"
	attemptHeader   = "x-attempt"
)

// Publishing is the subset of amqp.Channel used to publish jobs
type Publishing interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

func connect(url, queue string, log *logger.Logger) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	log.WithFields(map[string]any{
		"queue": queue,
	}).Info("Connected to RabbitMQ")

	return conn, ch, nil
}

func newMessage(name, messageID string, body []byte, attempt int) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Type:         name,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{attemptHeader: int32(attempt)},
		Body:         body,
	}
}

// attemptOf reads the attempt counter of a delivery, defaulting to the first attempt
func attemptOf(headers amqp.Table) int {
	switch v := headers[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}

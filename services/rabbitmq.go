package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"socialfeed/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type FeedEventType string

const (
	EventGraphChanged    FeedEventType = "graph.changed"
	EventPostCreated     FeedEventType = "post.created"
	EventTrendingRefresh FeedEventType = "trending.refresh"

	feedRoutingPattern = "feed.#"
)

// FeedEvent - событие, после которого кеш лент нужно сбросить на всех инстансах
type FeedEvent struct {
	Type    FeedEventType `json:"type"`
	UserIDs []int64       `json:"user_ids,omitempty"`
	At      time.Time     `json:"at"`
}

func (e FeedEvent) routingKey() string {
	return "feed." + string(e.Type)
}

// EventPublisher - то, что нужно сервисам записи
type EventPublisher interface {
	Publish(ctx context.Context, ev FeedEvent) error
}

// FeedInvalidator - хуки инвалидации движка
type FeedInvalidator interface {
	InvalidateUserFeed(ctx context.Context, userID int64) error
	InvalidateTrending(ctx context.Context) error
}

// FeedEventBus публикует события в topic exchange и слушает их через эксклюзивную очередь инстанса
type FeedEventBus struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
	// имя очереди уникально для инстанса: каждое событие получает каждый инстанс
	queue string
}

// InitRabbitMQ инициализирует соединение, exchange и канал публикации
func InitRabbitMQ(url, exchange string) (*FeedEventBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	// Создаем exchange типа topic
	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	bus := &FeedEventBus{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    "feed-invalidation-" + uuid.NewString(),
	}
	logger.Log.WithField("exchange", exchange).WithField("queue", bus.queue).Info("RabbitMQ initialized")
	return bus, nil
}

func (b *FeedEventBus) Publish(ctx context.Context, ev FeedEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	// amqp.Channel не потокобезопасен для публикации
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channel.PublishWithContext(ctx,
		b.exchange,
		ev.routingKey(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// StartInvalidationConsumer слушает события и вызывает хуки инвалидации.
// Останавливается при отмене ctx или закрытии канала
func (b *FeedEventBus) StartInvalidationConsumer(ctx context.Context, inv FeedInvalidator) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		b.queue,
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, feedRoutingPattern, b.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Log.Warn("feed event consumer channel closed")
					return
				}
				var ev FeedEvent
				if err := json.Unmarshal(msg.Body, &ev); err != nil {
					logger.Log.WithError(err).Warn("failed to unmarshal feed event")
					continue
				}
				HandleFeedEvent(ctx, inv, ev)
			}
		}
	}()
	return nil
}

// HandleFeedEvent применяет событие к локальному кешу. Ошибки инвалидации уже залогированы движком
func HandleFeedEvent(ctx context.Context, inv FeedInvalidator, ev FeedEvent) {
	switch ev.Type {
	case EventGraphChanged, EventPostCreated:
		for _, userID := range ev.UserIDs {
			_ = inv.InvalidateUserFeed(ctx, userID)
		}
	case EventTrendingRefresh:
		_ = inv.InvalidateTrending(ctx)
	default:
		logger.Log.WithField("type", ev.Type).Warn("unknown feed event")
	}
}

func (b *FeedEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channel != nil {
		_ = b.channel.Close()
	}
	return b.conn.Close()
}

// publish отправляет событие, если шина настроена. Ошибка только логируется
func publish(ctx context.Context, p EventPublisher, ev FeedEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		logger.Log.WithError(err).WithField("type", ev.Type).Warn("failed to publish feed event")
	}
}

package publisher

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/superscan/internal/repository"
	"github.com/fjod/go_cart/superscan/pkg/circuitbreaker"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultTopic = "transactions"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller forwards recorded sales from the outbox table to Kafka.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	batchSize int
	repo      repository.OutboxRepository
	writer    messageWriter
	breaker   *circuitbreaker.Breaker
	log       *zap.Logger
}

func NewOutboxPoller(repo repository.OutboxRepository, log *zap.Logger, topic string, tick time.Duration, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newOutboxPoller(repo, w, log, tick)
}

func newOutboxPoller(repo repository.OutboxRepository, w messageWriter, log *zap.Logger, tick time.Duration) *OutboxPoller {
	return &OutboxPoller{
		timeout:   5 * time.Second,
		eventTick: tick,
		batchSize: 100,
		repo:      repo,
		writer:    w,
		breaker:   circuitbreaker.New("kafka-publisher", circuitbreaker.DefaultSettings(), log),
		log:       log,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		err := p.breaker.Do(func() error { return p.publish(ctx, event) })
		if errors.Is(err, circuitbreaker.ErrOpen) {
			p.log.Warn("kafka circuit is open, postponing outbox batch", zap.Int("pending", len(events)))
			return
		}
		if err != nil {
			p.log.Error("failed to publish event", zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.Error("failed to mark event as processed", zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}
		p.log.Debug("event published",
			zap.Int64("event_id", event.ID),
			zap.String("transaction_id", event.AggregateID))
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // transaction id
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

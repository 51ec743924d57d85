package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const invalidationChannel = "analysis:invalidate"

// InvalidationSubscriber drops analyses from the local layer of cache when
// any instance announces a deletion.
type InvalidationSubscriber struct {
	rdb   *goredis.Client
	cache *AnalysisCache
}

func NewInvalidationSubscriber(rdb *goredis.Client, cache *AnalysisCache) *InvalidationSubscriber {
	return &InvalidationSubscriber{rdb: rdb, cache: cache}
}

// Start blocks until ctx is cancelled or the subscription is closed.
func (s *InvalidationSubscriber) Start(ctx context.Context) {
	pubsub := s.rdb.Subscribe(ctx, invalidationChannel)
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

func (s *InvalidationSubscriber) handle(payload string) {
	id, err := uuid.Parse(payload)
	if err != nil {
		slog.Warn("Ignoring malformed analysis invalidation", "payload", payload, "error", err)
		return
	}
	s.cache.DropLocal(id)
	slog.Debug("Analysis cache invalidated via pub/sub", "analysis_id", id)
}

type Publisher struct {
	rdb goredis.Cmdable
}

var _ domain.InvalidationPublisher = (*Publisher)(nil)

func NewPublisher(rdb goredis.Cmdable) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) PublishInvalidation(ctx context.Context, id uuid.UUID) error {
	if err := p.rdb.Publish(ctx, invalidationChannel, id.String()).Err(); err != nil {
		return fmt.Errorf("failed to publish analysis invalidation: %w", err)
	}
	return nil
}

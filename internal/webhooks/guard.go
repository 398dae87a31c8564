package webhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
	"github.com/NghaReformer/eventune-backend/pkg/redis"
)

// Guard deduplicates provider webhook deliveries via Redis markers.
// Processed events are checked before any order mutation and marked only
// after the mutation committed, so a crash between the two leaves the
// event retryable rather than lost.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewGuard(store redis.IdempotencyStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &Guard{store: store, ttl: ttl}, nil
}

func (g *Guard) key(provider enums.PaymentProvider, dedupKey string) string {
	return g.store.IdempotencyKey("webhook:"+provider.String(), dedupKey)
}

// HasProcessed reports whether this delivery was already fully handled.
func (g *Guard) HasProcessed(ctx context.Context, provider enums.PaymentProvider, dedupKey string) (bool, error) {
	if dedupKey == "" {
		return false, errors.New("dedup key is required")
	}
	seen, err := g.store.Exists(ctx, g.key(provider, dedupKey))
	if err != nil {
		return false, fmt.Errorf("check idempotency key: %w", err)
	}
	return seen, nil
}

// MarkProcessed records a successful delivery. Losing the race to another
// worker is fine; the marker only needs to exist.
func (g *Guard) MarkProcessed(ctx context.Context, provider enums.PaymentProvider, dedupKey string) error {
	if dedupKey == "" {
		return errors.New("dedup key is required")
	}
	if _, err := g.store.SetNX(ctx, g.key(provider, dedupKey), "1", g.ttl); err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	TopicProducts = "product_events"
	TopicCarts    = "cart_events"
	TopicUsers    = "user_events"

	publishTimeout = 5 * time.Second
)

// Publisher is satisfied by the kafka producer and the amqp publisher.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ProductIndexer interface {
	Upsert(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type CartCache interface {
	Get(ctx context.Context, userID uint) ([]byte, bool, error)
	Set(ctx context.Context, userID uint, data []byte) error
	Invalidate(ctx context.Context, userID uint) error
	InvalidateAll(ctx context.Context) error
}

type Event struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Effects runs the best-effort work that follows a committed write. Any
// field may be nil; failures are logged and never returned.
type Effects struct {
	Events Publisher
	Index  ProductIndexer
	Carts  CartCache
}

func (e Effects) publish(ctx context.Context, topic, typ string, key uint, data any) {
	if e.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := Event{Type: typ, ID: uuid.NewString(), OccurredAt: time.Now().UTC(), Data: data}
	if err := e.Events.PublishEvent(ctx, topic, strconv.FormatUint(uint64(key), 10), ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", typ, "error", err)
	}
}

func (e Effects) reindex(ctx context.Context, p *models.Product) {
	if e.Index == nil || p == nil {
		return
	}
	if err := e.Index.Upsert(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (e Effects) unindex(ctx context.Context, id uint) {
	if e.Index == nil {
		return
	}
	if err := e.Index.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_unindex_failed", "product_id", id, "error", err)
	}
}

func (e Effects) dropCart(ctx context.Context, userID uint) {
	if e.Carts == nil {
		return
	}
	if err := e.Carts.Invalidate(ctx, userID); err != nil {
		logging.FromContext(ctx).Warn("cart_cache_invalidate_failed", "user_id", userID, "error", err)
	}
}

func (e Effects) dropAllCarts(ctx context.Context) {
	if e.Carts == nil {
		return
	}
	if err := e.Carts.InvalidateAll(ctx); err != nil {
		logging.FromContext(ctx).Warn("cart_cache_invalidate_failed", "scope", "all", "error", err)
	}
}

func (e Effects) cachedCart(ctx context.Context, userID uint, dst any) bool {
	if e.Carts == nil {
		return false
	}
	data, ok, err := e.Carts.Get(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("cart_cache_get_failed", "user_id", userID, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logging.FromContext(ctx).Warn("cart_cache_decode_failed", "user_id", userID, "error", err)
		return false
	}
	return true
}

func (e Effects) storeCart(ctx context.Context, userID uint, v any) {
	if e.Carts == nil {
		return
	}
	data, err := json.Marshal(v)
	if err == nil {
		err = e.Carts.Set(ctx, userID, data)
	}
	if err != nil {
		logging.FromContext(ctx).Warn("cart_cache_set_failed", "user_id", userID, "error", err)
	}
}

// storeErr maps store failures onto domain kinds. what names the target in
// client messages, e.g. "Product with id 7".
func storeErr(err error, what string) error {
	var de *domain.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.Invalid("%s violates a foreign key constraint", what)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.Deadline("%s: operation timed out", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func withID(entity string, id uint) string {
	return fmt.Sprintf("%s with id %d", entity, id)
}

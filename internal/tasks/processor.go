package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storage"
)

// sweepMinAge keeps the photo sweep from deleting an object uploaded moments
// ago whose product row has not been updated yet.
const sweepMinAge = 24 * time.Hour

type Processor struct {
	orders   *repository.OrderRepository
	products *repository.ProductRepository
	store    *storage.PhotoStore
	cache    *redis.Client
	cfg      *config.AppConfig
	logger   zerolog.Logger
}

// TaskPayload carries the fields any storefront event may set. Stream values
// arrive as strings, so numeric fields stay strings here and are only logged.
type TaskPayload struct {
	Type       string `json:"type"`
	OrderID    string `json:"orderId"`
	BuyerID    string `json:"buyerId"`
	TotalCents string `json:"totalCents"`
	Status     string `json:"status"`
	Key        string `json:"key"`
}

func NewProcessor(
	orders *repository.OrderRepository,
	products *repository.ProductRepository,
	store *storage.PhotoStore,
	cache *redis.Client,
	cfg *config.AppConfig,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		orders:   orders,
		products: products,
		store:    store,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case "order.created":
		return p.handleOrderCreated(ctx, payload)
	case "order.status.changed":
		return p.handleOrderStatusChanged(ctx, payload)
	case "orders.expire":
		return p.handleOrderExpiry(ctx)
	case "product.photo.removed":
		return p.handlePhotoRemoved(ctx, payload)
	case "photos.sweep":
		return p.handlePhotoSweep(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

// handleOrderCreated drops the product shelves from cache; the checkout just
// changed stock and sold counts, so cached listings are stale.
func (p *Processor) handleOrderCreated(ctx context.Context, payload TaskPayload) error {
	if err := p.invalidateShelves(ctx); err != nil {
		return err
	}
	p.logger.Info().
		Str("order_id", payload.OrderID).
		Str("buyer_id", payload.BuyerID).
		Str("total_cents", payload.TotalCents).
		Msg("order created")
	return nil
}

func (p *Processor) handleOrderStatusChanged(ctx context.Context, payload TaskPayload) error {
	// A cancellation restocks the order's items, so listings change too.
	if payload.Status == string(models.OrderStatusCancelled) {
		if err := p.invalidateShelves(ctx); err != nil {
			return err
		}
	}
	p.logger.Info().
		Str("order_id", payload.OrderID).
		Str("status", payload.Status).
		Msg("order status changed")
	return nil
}

func (p *Processor) handleOrderExpiry(ctx context.Context) error {
	cutoff := time.Now().Add(-p.cfg.Orders.PendingTTL)
	expired, err := p.orders.ExpirePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("expire pending orders: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}
	if err := p.invalidateShelves(ctx); err != nil {
		return err
	}
	p.logger.Info().
		Int("count", len(expired)).
		Strs("order_ids", expired).
		Time("cutoff", cutoff).
		Msg("expired stale pending orders")
	return nil
}

func (p *Processor) handlePhotoRemoved(ctx context.Context, payload TaskPayload) error {
	if payload.Key == "" {
		p.logger.Warn().Msg("photo removal event without key")
		return nil
	}
	if err := p.store.Remove(ctx, payload.Key); err != nil {
		return fmt.Errorf("remove photo %s: %w", payload.Key, err)
	}
	p.logger.Info().Str("key", payload.Key).Msg("removed replaced photo")
	return nil
}

// handlePhotoSweep deletes stored objects no product references anymore.
// Uploads land in the store before the product row points at them, so only
// objects older than sweepMinAge are candidates.
func (p *Processor) handlePhotoSweep(ctx context.Context) error {
	referenced, err := p.products.PhotoKeys(ctx)
	if err != nil {
		return fmt.Errorf("list referenced photo keys: %w", err)
	}
	stored, err := p.store.ObjectAges(ctx)
	if err != nil {
		return fmt.Errorf("list stored objects: %w", err)
	}

	removed := 0
	for key, modified := range stored {
		if _, ok := referenced[key]; ok {
			continue
		}
		if time.Since(modified) < sweepMinAge {
			continue
		}
		if err := p.store.Remove(ctx, key); err != nil {
			p.logger.Error().Err(err).Str("key", key).Msg("sweep removal failed")
			continue
		}
		removed++
	}

	p.logger.Info().
		Int("stored", len(stored)).
		Int("referenced", len(referenced)).
		Int("removed", removed).
		Msg("photo sweep finished")
	return nil
}

func (p *Processor) invalidateShelves(ctx context.Context) error {
	keys := []string{service.CacheKeyCategories, service.CacheKeyNewArrivals, service.CacheKeyBestSellers}
	if err := p.cache.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate shelves: %w", err)
	}
	return nil
}

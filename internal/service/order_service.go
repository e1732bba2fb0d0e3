package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront/internal/config"
	"storefront/internal/ids"
	"storefront/internal/models"
	"storefront/internal/repository"
)

var (
	ErrEmptyOrder         = errors.New("order has no items")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrBadStatusChange    = errors.New("invalid status change")
)

var statusFlow = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped},
	models.OrderStatusShipped: {models.OrderStatusDelivered},
}

type OrderService struct {
	orders   *repository.OrderRepository
	products *repository.ProductRepository
	queue    *redis.Client
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewOrderService(
	orders *repository.OrderRepository,
	products *repository.ProductRepository,
	queue *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		queue:    queue,
		cfg:      cfg,
		log:      log,
	}
}

type CheckoutItem struct {
	ProductID string
	Quantity  int
}

// Checkout prices the basket from the product table, never from the request,
// and books the order with its stock decrement atomically.
func (s *OrderService) Checkout(ctx context.Context, buyerID string, items []CheckoutItem) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	merged := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return models.Order{}, fmt.Errorf("%w: quantity must be positive", ErrEmptyOrder)
		}
		if _, seen := merged[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		merged[item.ProductID] += item.Quantity
	}

	products, err := s.products.ListByIDs(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var total int64
	lines := make([]models.OrderItem, 0, len(order))
	for _, productID := range order {
		product, ok := byID[productID]
		if !ok {
			return models.Order{}, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		qty := merged[productID]
		lines = append(lines, models.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   qty,
		})
		total += product.PriceCents * int64(qty)
	}

	newOrder := models.Order{
		ID:         ids.New(),
		BuyerID:    buyerID,
		Status:     models.OrderStatusPending,
		TotalCents: total,
		Items:      lines,
	}

	if err := s.orders.CreateWithItems(ctx, newOrder); err != nil {
		return models.Order{}, err
	}

	s.emit(ctx, map[string]any{
		"type":       "order.created",
		"orderId":    newOrder.ID,
		"buyerId":    buyerID,
		"totalCents": total,
	})

	return s.orders.GetByID(ctx, newOrder.ID)
}

func (s *OrderService) Get(ctx context.Context, orderID, buyerID string) (models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.BuyerID != buyerID {
		return models.Order{}, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByBuyer(ctx context.Context, buyerID string, page, perPage int) ([]models.Order, error) {
	limit, offset := s.pageWindow(page, perPage)
	return s.orders.ListByBuyer(ctx, buyerID, limit, offset)
}

func (s *OrderService) AdminList(ctx context.Context, page, perPage int) ([]models.Order, error) {
	limit, offset := s.pageWindow(page, perPage)
	return s.orders.List(ctx, limit, offset)
}

// AdminUpdateStatus moves an order along pending -> paid -> shipped ->
// delivered. Cancelling a pending order restocks its items.
func (s *OrderService) AdminUpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if !canTransition(order.Status, status) {
		return models.Order{}, fmt.Errorf("%w: %s to %s", ErrBadStatusChange, order.Status, status)
	}

	if status == models.OrderStatusCancelled {
		err = s.orders.Cancel(ctx, orderID)
	} else {
		err = s.orders.UpdateStatus(ctx, orderID, status)
	}
	if err != nil {
		return models.Order{}, err
	}

	s.emit(ctx, map[string]any{
		"type":    "order.status.changed",
		"orderId": orderID,
		"status":  string(status),
	})

	return s.orders.GetByID(ctx, orderID)
}

func canTransition(from, to models.OrderStatus) bool {
	for _, allowed := range statusFlow[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *OrderService) pageWindow(page, perPage int) (limit, offset int) {
	if perPage <= 0 || perPage > 100 {
		perPage = s.cfg.Catalog.PageSize
	}
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}

func (s *OrderService) emit(ctx context.Context, values map[string]any) {
	if s.queue == nil {
		return
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.cfg.Worker.Stream,
		Values: values,
	}).Result()
	if err != nil {
		s.log.Warn().Err(err).Interface("event", values["type"]).Msg("enqueue order event failed")
	}
}

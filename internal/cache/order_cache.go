package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/metrics"
	"github.com/ecomshop/order-engine/internal/repository"
)

type OrderRepository interface {
	GetAllActiveOrders(ctx context.Context) ([]*repository.Order, error)
}

// OrderCache keeps orders still in flight in memory. Terminal orders are
// evicted on write.
type OrderCache struct {
	mu     sync.RWMutex
	cache  map[int64]*repository.Order
	repo   OrderRepository
	logger *zap.Logger
}

func NewOrderCache(repo OrderRepository, logger *zap.Logger) *OrderCache {
	return &OrderCache{
		cache:  make(map[int64]*repository.Order),
		repo:   repo,
		logger: logger,
	}
}

func (c *OrderCache) LoadInitialData(ctx context.Context) error {
	orders, err := c.repo.GetAllActiveOrders(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, order := range orders {
		orderCopy := *order
		c.cache[order.ID] = &orderCopy
	}
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
	c.logger.Info("loaded active orders into cache", zap.Int("count", len(c.cache)))
	return nil
}

func (c *OrderCache) Get(orderID int64) (*repository.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	order, found := c.cache[orderID]
	if !found {
		return nil, false
	}
	orderCopy := *order
	return &orderCopy, true
}

func (c *OrderCache) Set(order *repository.Order) {
	if isTerminalStatus(order.Status) {
		c.Delete(order.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	orderCopy := *order
	c.cache[order.ID] = &orderCopy
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
}

func (c *OrderCache) Delete(orderID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[orderID]; found {
		delete(c.cache, orderID)
		metrics.OrderCacheItems.Set(float64(len(c.cache)))
	}
}

func isTerminalStatus(status string) bool {
	return status == "delivered" || status == "completed" || status == "cancelled"
}

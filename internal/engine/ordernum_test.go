package engine

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/repository"
)

var (
	orderNumberPattern = regexp.MustCompile(`^ORD-\d{14}-\d{4}-\d{6}$`)
	fallbackPattern    = regexp.MustCompile(`^ORD-\d+-\d{4}-\d{9}$`)
	suffixedFallback   = regexp.MustCompile(`^ORD-\d+-\d{4}-\d{9}-\d{6}$`)
)

func TestGenerateOrderNumber_Format(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	tx, err := env.engine.db.BeginTx(ctx)
	require.NoError(t, err)
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	number, err := env.engine.generateOrderNumber(ctx, tx)
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, number)
}

func TestGenerateOrderNumber_ConcurrentUnique(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	const n = 100
	var (
		mu      sync.Mutex
		numbers = make(map[string]bool, n)
		wg      sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			tx, err := env.engine.db.BeginTx(ctx)
			if !assert.NoError(t, err) {
				return
			}

			number, err := env.engine.generateOrderNumber(ctx, tx)
			if !assert.NoError(t, err) {
				_ = tx.Rollback(context.Background())
				return
			}

			err = env.engine.orders.CreateTx(ctx, tx, &repository.Order{
				OrderNumber: number,
				Status:      StatusPending,
			})
			if !assert.NoError(t, err) {
				_ = tx.Rollback(context.Background())
				return
			}
			if !assert.NoError(t, tx.Commit(ctx)) {
				return
			}

			mu.Lock()
			numbers[number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, n, "every generated number must be unique")
	for number := range numbers {
		assert.Regexp(t, orderNumberPattern, number)
	}
}

// collidingOrders forces NumberExistsTx to report a collision the first
// `collisions` times it is asked.
type collidingOrders struct {
	mu         sync.Mutex
	collisions int
	calls      int
}

func (r *collidingOrders) NumberExistsTx(ctx context.Context, tx db.Tx, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.calls <= r.collisions, nil
}

func (r *collidingOrders) CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	return nil
}

func (r *collidingOrders) GetByID(ctx context.Context, id int64) (*repository.Order, error) {
	return nil, repository.ErrObjectNotFound
}

func (r *collidingOrders) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Order, error) {
	return nil, repository.ErrObjectNotFound
}

func (r *collidingOrders) UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	return nil
}

func newCollidingEngine(orders *collidingOrders) *Engine {
	eng := New(nil, orders, nil, nil, nil, nil, nil, zap.NewNop())
	return eng
}

func TestGenerateOrderNumber_RetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	orders := &collidingOrders{collisions: 3}
	eng := newCollidingEngine(orders)

	number, err := eng.generateOrderNumber(ctx, nil)
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, number)
	assert.Equal(t, 4, orders.calls)
}

func TestGenerateOrderNumber_FallbackAfterExhaustion(t *testing.T) {
	ctx := context.Background()
	orders := &collidingOrders{collisions: orderNumberMaxAttempts}
	eng := newCollidingEngine(orders)

	start := time.Now()
	number, err := eng.generateOrderNumber(ctx, nil)
	require.NoError(t, err)

	assert.Regexp(t, fallbackPattern, number)
	assert.Equal(t, orderNumberMaxAttempts+1, orders.calls)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerateOrderNumber_SuffixWhenFallbackCollides(t *testing.T) {
	ctx := context.Background()
	orders := &collidingOrders{collisions: orderNumberMaxAttempts + 1}
	eng := newCollidingEngine(orders)

	number, err := eng.generateOrderNumber(ctx, nil)
	require.NoError(t, err)

	// The suffixed fallback is accepted without a further existence check.
	assert.Regexp(t, suffixedFallback, number)
	assert.Equal(t, orderNumberMaxAttempts+1, orders.calls)
}

func TestRandomComponent_Range(t *testing.T) {
	now := time.Now()
	for i := 0; i < 1000; i++ {
		v := randomComponent(now)
		require.GreaterOrEqual(t, v, int64(0))
		require.Less(t, v, int64(1_000_000))
	}
}

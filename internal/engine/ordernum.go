package engine

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/metrics"
)

const orderNumberMaxAttempts = 20

// generateOrderNumber produces a unique human-readable order number of the
// form ORD-<timestamp>-<processpart>-<randompart>. Uniqueness is checked
// with a locking read inside the caller's transaction, so two concurrent
// generators cannot both observe a number as free. Collisions back off
// 0.1–1 ms and retry; once attempts run out a deterministic fallback
// with finer-grained random padding takes over. A collision on the fallback
// itself gets a microsecond suffix and is accepted without another check —
// that residual probability is negligible, not zero.
func (e *Engine) generateOrderNumber(ctx context.Context, tx db.Tx) (string, error) {
	processPart := os.Getpid() % 10000

	for attempt := 1; attempt <= orderNumberMaxAttempts; attempt++ {
		now := e.nowFunc()
		number := fmt.Sprintf("ORD-%s-%04d-%06d",
			now.Format("20060102150405"), processPart, randomComponent(now))

		exists, err := e.orders.NumberExistsTx(ctx, tx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if !exists {
			return number, nil
		}

		metrics.OrderNumberCollisionsTotal.Inc()
		e.logger.Debug("order number collision",
			zap.String("number", number),
			zap.Int("attempt", attempt),
		)
		if attempt < orderNumberMaxAttempts {
			time.Sleep(time.Duration(100+rand.Intn(900)) * time.Microsecond)
		}
	}

	now := e.nowFunc()
	fallback := fmt.Sprintf("ORD-%d-%04d-%09d", now.UnixNano(), processPart, rand.Int63n(1_000_000_000))

	exists, err := e.orders.NumberExistsTx(ctx, tx, fallback)
	if err != nil {
		return "", fmt.Errorf("failed to check order number: %w", err)
	}
	if exists {
		fallback = fmt.Sprintf("%s-%06d", fallback, e.nowFunc().UnixMicro()%1_000_000)
	}

	e.logger.Warn("order number attempts exhausted, using fallback",
		zap.String("number", fallback),
	)
	return fallback, nil
}

// randomComponent mixes several entropy sources so concurrent generators in
// the same microsecond still diverge.
func randomComponent(now time.Time) int64 {
	mix := now.UnixMicro() ^ int64(uuid.New().ID()) ^ rand.Int63()
	if mix < 0 {
		mix = -mix
	}
	return mix % 1_000_000
}

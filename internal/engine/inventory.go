package engine

import (
	"context"
	"fmt"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/repository"
)

// adjustStockTx deducts quantity from the stock counter backing an item,
// inside the caller's transaction. The rows were read FOR UPDATE, so the
// read-decrement-write cannot lose an update to a concurrent replacement.
// Variations flip in_stock once stock is gone; plain products carry no
// availability flag to flip.
func (e *Engine) adjustStockTx(ctx context.Context, tx db.Tx, product *repository.Product, variation *repository.ProductVariation, quantity int) error {
	if variation != nil {
		remaining := variation.StockQuantity - quantity
		inStock := remaining > 0
		if err := e.products.UpdateVariationStockTx(ctx, tx, variation.ID, remaining, inStock); err != nil {
			return fmt.Errorf("failed to update variation stock: %w", err)
		}
		variation.StockQuantity = remaining
		variation.InStock = inStock
		return nil
	}

	remaining := product.TotalQuantity - quantity
	if err := e.products.UpdateStockTx(ctx, tx, product.ID, remaining); err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}
	product.TotalQuantity = remaining
	return nil
}

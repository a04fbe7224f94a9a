package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomshop/order-engine/internal/repository"
)

func seedReplaceableOrder(env *testEnv) (orderID, itemID int64) {
	env.store.addProduct(&repository.Product{
		ID: 1, Name: "Shirt", SKU: "SH-1", TotalQuantity: 10, Price: 20,
		IsReturnable: true, IsReplaceable: true,
	})
	orderID = env.store.addOrder(&repository.Order{
		OrderNumber: "ORD-PARENT", Status: StatusDelivered, UserID: int64Ptr(5),
		ShippingName: "Dana", ShippingCity: "Austin",
		ReplacementStatus: strPtr(RequestPending),
	})
	itemID = env.store.addItem(&repository.OrderItem{
		OrderID: orderID, ProductID: 1, ProductName: "Shirt", SKU: "SH-1",
		Quantity: 2, Price: 20, Subtotal: 40, IsReplaceable: true,
		ReplacementStatus: strPtr(RequestPending),
	})
	return orderID, itemID
}

func TestApproveReplacement_Item(t *testing.T) {
	ctx := context.Background()

	t.Run("spawns one child order and deducts stock", func(t *testing.T) {
		env := newTestEnv()
		orderID, itemID := seedReplaceableOrder(env)
		before := env.store.ordersCount()

		require.NoError(t, env.engine.ApproveReplacement(ctx, orderID, int64Ptr(itemID)))

		assert.Equal(t, before+1, env.store.ordersCount())

		item := env.store.item(t, itemID)
		require.NotNil(t, item.ReplacementStatus)
		assert.Equal(t, RequestApproved, *item.ReplacementStatus)
		require.NotNil(t, item.ReplacementOrderItemID)

		childItem := env.store.item(t, *item.ReplacementOrderItemID)
		assert.Equal(t, item.Quantity, childItem.Quantity)
		assert.Equal(t, item.Price, childItem.Price)
		assert.Equal(t, item.Subtotal, childItem.Subtotal)
		assert.Nil(t, childItem.ReplacementStatus)

		child := env.store.order(t, childItem.OrderID)
		assert.Equal(t, StatusPending, child.Status)
		assert.True(t, strings.HasPrefix(child.OrderNumber, "ORD-"))
		assert.NotEqual(t, "ORD-PARENT", child.OrderNumber)
		assert.Equal(t, 40.0, child.Subtotal)
		assert.Equal(t, 40.0, child.Total)
		assert.Equal(t, "Dana", child.ShippingName)
		assert.Equal(t, "Austin", child.ShippingCity)
		require.NotNil(t, child.Notes)
		assert.Equal(t, "Replacement for Shirt from order ORD-PARENT", *child.Notes)

		parent := env.store.order(t, orderID)
		require.NotNil(t, parent.ReplacementStatus)
		assert.Equal(t, RequestApproved, *parent.ReplacementStatus)
		require.NotNil(t, parent.ReplacementOrderID)
		assert.Equal(t, child.ID, *parent.ReplacementOrderID)

		env.store.mu.Lock()
		product := env.store.products[1]
		env.store.mu.Unlock()
		assert.Equal(t, 8, product.TotalQuantity)
	})

	t.Run("variation stock flips in_stock at zero", func(t *testing.T) {
		env := newTestEnv()
		orderID, itemID := seedReplaceableOrder(env)
		env.store.addVariation(&repository.ProductVariation{
			ID: 3, ProductID: 1, Size: "M", Color: "navy", StockQuantity: 2, InStock: true,
		})
		env.store.mu.Lock()
		env.store.items[itemID].VariationID = int64Ptr(3)
		env.store.mu.Unlock()

		require.NoError(t, env.engine.ApproveReplacement(ctx, orderID, int64Ptr(itemID)))

		env.store.mu.Lock()
		variation := env.store.variations[3]
		env.store.mu.Unlock()
		assert.Equal(t, 0, variation.StockQuantity)
		assert.False(t, variation.InStock)
	})

	t.Run("non-replaceable item is refused", func(t *testing.T) {
		env := newTestEnv()
		orderID, itemID := seedReplaceableOrder(env)
		env.store.mu.Lock()
		env.store.items[itemID].IsReplaceable = false
		env.store.mu.Unlock()
		before := env.store.ordersCount()

		err := env.engine.ApproveReplacement(ctx, orderID, int64Ptr(itemID))
		require.True(t, IsPrecondition(err))
		assert.EqualError(t, err, "Shirt is not replaceable")
		assert.Equal(t, before, env.store.ordersCount())
	})

	t.Run("non-pending request is refused", func(t *testing.T) {
		env := newTestEnv()
		orderID, itemID := seedReplaceableOrder(env)
		env.store.mu.Lock()
		env.store.items[itemID].ReplacementStatus = strPtr(RequestApproved)
		env.store.mu.Unlock()

		err := env.engine.ApproveReplacement(ctx, orderID, int64Ptr(itemID))
		require.True(t, IsPrecondition(err))
	})

	t.Run("missing product rolls everything back", func(t *testing.T) {
		env := newTestEnv()
		orderID, itemID := seedReplaceableOrder(env)
		env.store.mu.Lock()
		delete(env.store.products, 1)
		env.store.mu.Unlock()
		before := env.store.ordersCount()

		err := env.engine.ApproveReplacement(ctx, orderID, int64Ptr(itemID))
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, before, env.store.ordersCount())

		item := env.store.item(t, itemID)
		require.NotNil(t, item.ReplacementStatus)
		assert.Equal(t, RequestPending, *item.ReplacementStatus)
	})
}

func TestApproveReplacement_Order(t *testing.T) {
	ctx := context.Background()

	t.Run("spawns one child per pending item", func(t *testing.T) {
		env := newTestEnv()
		orderID, firstID := seedReplaceableOrder(env)
		env.store.addProduct(&repository.Product{
			ID: 2, Name: "Shoes", SKU: "SO-1", TotalQuantity: 5, Price: 50, IsReplaceable: true,
		})
		secondID := env.store.addItem(&repository.OrderItem{
			OrderID: orderID, ProductID: 2, ProductName: "Shoes", SKU: "SO-1",
			Quantity: 1, Price: 50, Subtotal: 50, IsReplaceable: true,
			ReplacementStatus: strPtr(RequestPending),
		})
		before := env.store.ordersCount()

		require.NoError(t, env.engine.ApproveReplacement(ctx, orderID, nil))

		assert.Equal(t, before+2, env.store.ordersCount())

		first := env.store.item(t, firstID)
		second := env.store.item(t, secondID)
		require.NotNil(t, first.ReplacementOrderItemID)
		require.NotNil(t, second.ReplacementOrderItemID)

		firstChild := env.store.item(t, *first.ReplacementOrderItemID).OrderID
		secondChild := env.store.item(t, *second.ReplacementOrderItemID).OrderID
		assert.NotEqual(t, firstChild, secondChild)

		parent := env.store.order(t, orderID)
		require.NotNil(t, parent.ReplacementStatus)
		assert.Equal(t, RequestApproved, *parent.ReplacementStatus)
		require.NotNil(t, parent.ReplacementOrderID)
		assert.Equal(t, firstChild, *parent.ReplacementOrderID)

		env.store.mu.Lock()
		shirtStock := env.store.products[1].TotalQuantity
		shoeStock := env.store.products[2].TotalQuantity
		env.store.mu.Unlock()
		assert.Equal(t, 8, shirtStock)
		assert.Equal(t, 4, shoeStock)
	})

	t.Run("whole batch refused when any item is not replaceable", func(t *testing.T) {
		env := newTestEnv()
		orderID, _ := seedReplaceableOrder(env)
		env.store.addItem(&repository.OrderItem{
			OrderID: orderID, ProductID: 1, ProductName: "Gift Card",
			Quantity: 1, Price: 25, Subtotal: 25, IsReplaceable: false,
			ReplacementStatus: strPtr(RequestPending),
		})
		before := env.store.ordersCount()

		err := env.engine.ApproveReplacement(ctx, orderID, nil)
		require.True(t, IsBatchRejection(err))
		assert.Contains(t, err.Error(), "Gift Card")
		assert.Equal(t, before, env.store.ordersCount())

		parent := env.store.order(t, orderID)
		require.NotNil(t, parent.ReplacementStatus)
		assert.Equal(t, RequestPending, *parent.ReplacementStatus)
	})

	t.Run("no pending items", func(t *testing.T) {
		env := newTestEnv()
		orderID := env.store.addOrder(&repository.Order{
			OrderNumber: "ORD-1", Status: StatusDelivered, ReplacementStatus: strPtr(RequestPending),
		})
		env.store.addItem(&repository.OrderItem{OrderID: orderID, ProductName: "Shirt"})

		err := env.engine.ApproveReplacement(ctx, orderID, nil)
		require.True(t, IsPrecondition(err))
		assert.EqualError(t, err, "no pending replacement items")
	})

	t.Run("requires a pending order-level request", func(t *testing.T) {
		env := newTestEnv()
		orderID := env.store.addOrder(&repository.Order{OrderNumber: "ORD-1", Status: StatusDelivered})

		err := env.engine.ApproveReplacement(ctx, orderID, nil)
		require.True(t, IsPrecondition(err))
	})
}

func TestApproveReplacement_ConcurrentStockDecrement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	const n = 10
	env.store.addProduct(&repository.Product{
		ID: 1, Name: "Shirt", SKU: "SH-1", TotalQuantity: 100, Price: 20, IsReplaceable: true,
	})

	orderIDs := make([]int64, 0, n)
	itemIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		orderID := env.store.addOrder(&repository.Order{
			OrderNumber:       fmt.Sprintf("ORD-PARENT-%d", i),
			Status:            StatusDelivered,
			ReplacementStatus: strPtr(RequestPending),
		})
		itemID := env.store.addItem(&repository.OrderItem{
			OrderID: orderID, ProductID: 1, ProductName: "Shirt", SKU: "SH-1",
			Quantity: 2, Price: 20, Subtotal: 40, IsReplaceable: true,
			ReplacementStatus: strPtr(RequestPending),
		})
		orderIDs = append(orderIDs, orderID)
		itemIDs = append(itemIDs, itemID)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(orderID, itemID int64) {
			defer wg.Done()
			assert.NoError(t, env.engine.ApproveReplacement(ctx, orderID, int64Ptr(itemID)))
		}(orderIDs[i], itemIDs[i])
	}
	wg.Wait()

	env.store.mu.Lock()
	stock := env.store.products[1].TotalQuantity
	env.store.mu.Unlock()
	assert.Equal(t, 100-n*2, stock, "no decrement may be lost under concurrency")
}

func TestRejectReplacement(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects item and rolls up", func(t *testing.T) {
		env := newTestEnv()
		orderID, itemID := seedReplaceableOrder(env)

		require.NoError(t, env.engine.RejectReplacement(ctx, orderID, int64Ptr(itemID), "damage not covered"))

		item := env.store.item(t, itemID)
		require.NotNil(t, item.ReplacementStatus)
		assert.Equal(t, RequestRejected, *item.ReplacementStatus)
		require.NotNil(t, item.ReplacementNotes)
		assert.Equal(t, "Rejection: damage not covered", *item.ReplacementNotes)

		parent := env.store.order(t, orderID)
		require.NotNil(t, parent.ReplacementStatus)
		assert.Equal(t, RequestRejected, *parent.ReplacementStatus)
	})

	t.Run("rejects order-level request", func(t *testing.T) {
		env := newTestEnv()
		orderID := env.store.addOrder(&repository.Order{
			OrderNumber: "ORD-1", Status: StatusDelivered, ReplacementStatus: strPtr(RequestPending),
		})

		require.NoError(t, env.engine.RejectReplacement(ctx, orderID, nil, "out of window"))

		order := env.store.order(t, orderID)
		require.NotNil(t, order.ReplacementStatus)
		assert.Equal(t, RequestRejected, *order.ReplacementStatus)
	})
}

func TestProcessReplacement(t *testing.T) {
	ctx := context.Background()

	t.Run("marks approved item processed", func(t *testing.T) {
		env := newTestEnv()
		orderID := env.store.addOrder(&repository.Order{OrderNumber: "ORD-1", Status: StatusDelivered})
		itemID := env.store.addItem(&repository.OrderItem{
			OrderID: orderID, ProductName: "Shirt", ReplacementStatus: strPtr(RequestApproved),
		})

		require.NoError(t, env.engine.ProcessReplacement(ctx, orderID, int64Ptr(itemID)))

		item := env.store.item(t, itemID)
		require.NotNil(t, item.ReplacementStatus)
		assert.Equal(t, RequestProcessed, *item.ReplacementStatus)
	})

	t.Run("marks approved order processed", func(t *testing.T) {
		env := newTestEnv()
		orderID := env.store.addOrder(&repository.Order{
			OrderNumber: "ORD-1", Status: StatusDelivered, ReplacementStatus: strPtr(RequestApproved),
		})

		require.NoError(t, env.engine.ProcessReplacement(ctx, orderID, nil))

		order := env.store.order(t, orderID)
		require.NotNil(t, order.ReplacementStatus)
		assert.Equal(t, RequestProcessed, *order.ReplacementStatus)
	})

	t.Run("double processing fails", func(t *testing.T) {
		env := newTestEnv()
		orderID := env.store.addOrder(&repository.Order{
			OrderNumber: "ORD-1", Status: StatusDelivered, ReplacementStatus: strPtr(RequestApproved),
		})

		require.NoError(t, env.engine.ProcessReplacement(ctx, orderID, nil))

		err := env.engine.ProcessReplacement(ctx, orderID, nil)
		require.True(t, IsPrecondition(err))
		assert.EqualError(t, err, "replacement has already been processed")
	})

	t.Run("requires approval first", func(t *testing.T) {
		env := newTestEnv()
		orderID := env.store.addOrder(&repository.Order{
			OrderNumber: "ORD-1", Status: StatusDelivered, ReplacementStatus: strPtr(RequestPending),
		})

		err := env.engine.ProcessReplacement(ctx, orderID, nil)
		require.True(t, IsPrecondition(err))
		assert.EqualError(t, err, "replacement request is not approved")
	})
}

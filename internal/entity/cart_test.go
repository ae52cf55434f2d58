package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddOrUpdateLine_MergesBySku(t *testing.T) {
	cart := &Cart{}
	cart.AddOrUpdateLine(CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 2, PriceSnapshot: 1000})
	cart.AddOrUpdateLine(CartLine{Sku: "SKU-1", SubSku: "SKU-1-RED", Quantity: 3, PriceSnapshot: 1200})

	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(5), cart.Lines[0].Quantity)
	// price snapshot is last-write-wins
	assert.Equal(t, int64(1200), cart.Lines[0].PriceSnapshot)
}

func TestAddOrUpdateLine_PreservesInsertionOrder(t *testing.T) {
	cart := &Cart{}
	cart.AddOrUpdateLine(CartLine{Sku: "B", SubSku: "B-1", Quantity: 1})
	cart.AddOrUpdateLine(CartLine{Sku: "A", SubSku: "A-1", Quantity: 1})
	cart.AddOrUpdateLine(CartLine{Sku: "B", SubSku: "B-1", Quantity: 1})

	assert.Equal(t, "B", cart.Lines[0].Sku)
	assert.Equal(t, "A", cart.Lines[1].Sku)
}

func TestUpdateLineQuantity(t *testing.T) {
	cart := &Cart{Lines: []CartLine{{Sku: "SKU-1", Quantity: 2}}}

	assert.True(t, cart.UpdateLineQuantity("SKU-1", 7))
	assert.Equal(t, int64(7), cart.LineQuantity("SKU-1"))

	// non-positive quantity removes the line
	assert.True(t, cart.UpdateLineQuantity("SKU-1", 0))
	assert.Empty(t, cart.Lines)

	assert.False(t, cart.UpdateLineQuantity("SKU-1", 1))
}

func TestRemoveLineAndClear(t *testing.T) {
	cart := &Cart{Lines: []CartLine{{Sku: "A", Quantity: 1}, {Sku: "B", Quantity: 2}}}

	assert.True(t, cart.RemoveLine("A"))
	assert.False(t, cart.RemoveLine("A"))
	assert.Len(t, cart.Lines, 1)

	cart.Clear()
	assert.Empty(t, cart.Lines)
	cart.Clear()
	assert.Empty(t, cart.Lines)
}

func TestCartTotals(t *testing.T) {
	cart := &Cart{Lines: []CartLine{
		{Sku: "A", Quantity: 2, PriceSnapshot: 1500},
		{Sku: "B", Quantity: 1, PriceSnapshot: 700},
	}}
	assert.Equal(t, int64(3700), cart.TotalAmount())
	assert.Equal(t, int64(3), cart.TotalItems())
}

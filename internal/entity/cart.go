package domain

import "time"

// CartLine is one entry in a user's cart. Identity within a cart is the SKU;
// SubSku identifies the sellable variant at the inventory ledger.
type CartLine struct {
	Sku                    string `json:"sku"`
	SubSku                 string `json:"subSku"`
	Title                  string `json:"title,omitempty"`
	ImageURL               string `json:"imageUrl,omitempty"`
	Quantity               int64  `json:"quantity"`
	PriceSnapshot          int64  `json:"priceSnapshot"`
	AvailableStockSnapshot int64  `json:"availableStockSnapshot,omitempty"`
}

// Cart is the canonical snapshot of a user's cart. One cart per user.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Lines     []CartLine `json:"lines"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TotalAmount is the sum of quantity x price snapshot over all lines.
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Quantity * l.PriceSnapshot
	}
	return total
}

// TotalItems is the sum of quantities over all lines.
func (c *Cart) TotalItems() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// AddOrUpdateLine merges by SKU: quantities are summed and the price snapshot
// (and display fields) take the incoming value. New SKUs are appended,
// preserving insertion order.
func (c *Cart) AddOrUpdateLine(line CartLine) {
	for i := range c.Lines {
		if c.Lines[i].Sku == line.Sku {
			c.Lines[i].Quantity += line.Quantity
			c.Lines[i].PriceSnapshot = line.PriceSnapshot
			if line.Title != "" {
				c.Lines[i].Title = line.Title
			}
			if line.ImageURL != "" {
				c.Lines[i].ImageURL = line.ImageURL
			}
			if line.AvailableStockSnapshot != 0 {
				c.Lines[i].AvailableStockSnapshot = line.AvailableStockSnapshot
			}
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// RemoveLine removes the line with the given SKU. Returns false if absent.
func (c *Cart) RemoveLine(sku string) bool {
	for i := range c.Lines {
		if c.Lines[i].Sku == sku {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateLineQuantity sets the quantity for a SKU. A non-positive quantity
// removes the line instead; a quantity is never persisted as <= 0.
// Returns false if the SKU is absent.
func (c *Cart) UpdateLineQuantity(sku string, quantity int64) bool {
	for i := range c.Lines {
		if c.Lines[i].Sku == sku {
			if quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			} else {
				c.Lines[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// Clear empties the cart. Idempotent.
func (c *Cart) Clear() {
	c.Lines = c.Lines[:0]
}

// LineQuantity returns the current quantity for a SKU, 0 if absent.
func (c *Cart) LineQuantity(sku string) int64 {
	for _, l := range c.Lines {
		if l.Sku == sku {
			return l.Quantity
		}
	}
	return 0
}

// Package cart is the storefront's single-owner shopping cart. Every mutation
// is written through to storage as one JSON blob under StorageKey.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/storage"
)

const StorageKey = "cart"

// Line is a product snapshot taken when it was first added, plus a quantity >= 1.
type Line struct {
	models.Product
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

type Cart struct {
	store storage.Storage
	lines []Line

	Now func() time.Time
}

// New returns an empty cart bound to store without reading it.
func New(store storage.Storage) *Cart {
	return &Cart{store: store, Now: time.Now}
}

// Load reads the persisted cart. A missing blob yields an empty cart; a blob
// that does not decode is an error.
func Load(ctx context.Context, store storage.Storage) (*Cart, error) {
	c := New(store)

	data, err := store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode stored cart: %w", err)
	}
	c.lines = lines
	return c, nil
}

func (c *Cart) save(ctx context.Context, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := c.store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	c.lines = lines
	return nil
}

func (c *Cart) index(productID int) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ID == productID })
}

// AddToCart increments the line for p or appends a new one. qty below 1 counts as 1.
func (c *Cart) AddToCart(ctx context.Context, p models.Product, qty int) error {
	qty = max(qty, 1)
	lines := slices.Clone(c.lines)

	if i := c.index(p.ID); i >= 0 {
		lines[i].Quantity += qty
	} else {
		lines = append(lines, Line{Product: p, Quantity: qty, AddedAt: c.Now().UTC()})
	}
	return c.save(ctx, lines)
}

// RemoveFromCart deletes the line for productID. Absent ids are a no-op.
func (c *Cart) RemoveFromCart(ctx context.Context, productID int) error {
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	return c.save(ctx, slices.Delete(slices.Clone(c.lines), i, i+1))
}

// UpdateQuantity overwrites the quantity of a line; qty below 1 removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, productID, qty int) error {
	if qty < 1 {
		return c.RemoveFromCart(ctx, productID)
	}
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	lines := slices.Clone(c.lines)
	lines[i].Quantity = qty
	return c.save(ctx, lines)
}

func (c *Cart) Clear(ctx context.Context) error {
	return c.save(ctx, []Line{})
}

// Merge folds incoming lines into the cart, summing quantities for products
// already present. Lines with quantity below 1 are ignored.
func (c *Cart) Merge(ctx context.Context, incoming []Line) error {
	lines := slices.Clone(c.lines)
	for _, in := range incoming {
		if in.Quantity < 1 {
			continue
		}
		i := slices.IndexFunc(lines, func(l Line) bool { return l.ID == in.ID })
		if i >= 0 {
			lines[i].Quantity += in.Quantity
			continue
		}
		if in.AddedAt.IsZero() {
			in.AddedAt = c.Now().UTC()
		}
		lines = append(lines, in)
	}
	return c.save(ctx, lines)
}

// Lines returns a copy of the cart in insertion order.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

func (c *Cart) Line(productID int) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Count is the sum of quantities.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total is the sum of price times quantity, unrounded.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

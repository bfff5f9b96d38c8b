// Package cart holds an ordered shopping cart of catalog items. Entry
// identity is the (slug, certificate) pair: the same project can sit in the
// cart twice with different certificate choices, but re-adding an existing
// pair merges quantities instead of duplicating the entry.
package cart

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

// Certificate is the with/without-certificate variant of a catalog item.
// It affects both the unit price and cart identity.
type Certificate string

const (
	CertificateWith    Certificate = "with"
	CertificateWithout Certificate = "without"
)

// StorageKey is the fixed namespace the cart persists under, matching the key
// the site frontend uses in browser storage.
const StorageKey = "cc_cart_v1"

// Item is one cart entry. Price is the unit price after the certificate
// adjustment.
type Item struct {
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Image       string      `json:"image"`
	Tech        []string    `json:"tech"`
	Price       float64     `json:"price"`
	Certificate Certificate `json:"certificate"`
	Quantity    int         `json:"quantity"`
}

// Cart is an ordered collection of items. Not safe for concurrent use; a cart
// belongs to a single shopper.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Add puts qty units of item in the cart. An existing (slug, certificate)
// entry has its quantity incremented; otherwise the item is appended. A qty
// below 1 counts as 1.
func (c *Cart) Add(item Item, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.items {
		if c.items[i].Slug == item.Slug && c.items[i].Certificate == item.Certificate {
			c.items[i].Quantity += qty
			return
		}
	}
	item.Quantity = qty
	c.items = append(c.items, item)
}

// Remove drops every entry for slug regardless of certificate choice.
func (c *Cart) Remove(slug string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.Slug != slug {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// RemoveVariant drops only the entry matching both slug and certificate.
func (c *Cart) RemoveVariant(slug string, certificate Certificate) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.Slug != slug || it.Certificate != certificate {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// SetQuantity sets the quantity of the (slug, certificate) entry, clamped to
// a minimum of 1. Addressing the full pair keeps the operation unambiguous
// when both certificate variants of a slug are in the cart.
func (c *Cart) SetQuantity(slug string, certificate Certificate, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.items {
		if c.items[i].Slug == slug && c.items[i].Certificate == certificate {
			c.items[i].Quantity = qty
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Subtotal is the sum of price × quantity over all entries.
func (c *Cart) Subtotal() float64 {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.InexactFloat64()
}

// Save persists the cart under StorageKey in dir so it survives restarts.
func (c *Cart) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(c.items)
	if err != nil {
		return err
	}
	return os.WriteFile(statePath(dir), raw, 0o644)
}

// Load restores a cart saved in dir. A missing or unreadable state file
// yields an empty cart; cart state is disposable, unlike the record store.
func Load(dir string) *Cart {
	raw, err := os.ReadFile(statePath(dir))
	if err != nil {
		return New()
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return New()
	}
	return &Cart{items: items}
}

func statePath(dir string) string {
	return filepath.Join(dir, StorageKey+".json")
}

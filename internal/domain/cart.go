package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TempIDPrefix marks cart ids synthesized on the client before the server
// has confirmed the line.
const TempIDPrefix = "temp-"

type CartItem struct {
	CartID          ID                  `json:"cart_id"`
	ProductID       int64               `json:"product_id"`
	ProductName     string              `json:"product_name"`
	BasePrice       decimal.Decimal     `json:"base_price"`
	DiscountedPrice decimal.NullDecimal `json:"discounted_price"`
	ImageURL        *string             `json:"image_url"`
	Quantity        int                 `json:"quantity"`
	VariantID       *int64              `json:"variant_id"`
	VariantName     *string             `json:"variant_name"`
	VariantPrice    decimal.NullDecimal `json:"variant_price"`
	VendorID        *int64              `json:"vendor_id,omitempty"`
}

// UnitPrice is variant price, then discounted price, then base price.
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.VariantPrice.Valid {
		return i.VariantPrice.Decimal
	}
	if i.DiscountedPrice.Valid {
		return i.DiscountedPrice.Decimal
	}
	return i.BasePrice
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) IsTemporary() bool {
	return strings.HasPrefix(string(i.CartID), TempIDPrefix)
}

// Matches reports whether the item is the line for productID/variantID.
func (i CartItem) Matches(productID int64, variantID *int64) bool {
	return i.ProductID == productID && sameVariant(i.VariantID, variantID)
}

func (i CartItem) clone() CartItem {
	c := i
	c.ImageURL = clonePtr(i.ImageURL)
	c.VariantID = clonePtr(i.VariantID)
	c.VariantName = clonePtr(i.VariantName)
	c.VendorID = clonePtr(i.VendorID)
	return c
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CartState is the locally held view of the cart.
// Invariant: ItemCount == sum(Items.Quantity).
type CartState struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
	Loading   bool            `json:"loading"`
}

// Totals computes total and item count from the lines.
func Totals(items []CartItem) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, it := range items {
		total = total.Add(it.LineTotal())
		count += it.Quantity
	}
	return total, count
}

// NewCartState builds a state from items. A non-zero server total is
// authoritative and replaces the computed one for both total and subtotal.
func NewCartState(items []CartItem, serverTotal decimal.NullDecimal) CartState {
	kept := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		kept = append(kept, it.clone())
	}
	total, count := Totals(kept)
	s := CartState{Items: kept, Total: total, Subtotal: total, ItemCount: count}
	if serverTotal.Valid && !serverTotal.Decimal.IsZero() {
		s.Total = serverTotal.Decimal
		s.Subtotal = serverTotal.Decimal
	}
	return s
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s CartState) Clone() CartState {
	c := s
	c.Items = make([]CartItem, len(s.Items))
	for i, it := range s.Items {
		c.Items[i] = it.clone()
	}
	return c
}

func (s CartState) Empty() bool {
	return len(s.Items) == 0
}

// Find returns the index of the line with cartID, or -1.
func (s CartState) Find(cartID ID) int {
	for i, it := range s.Items {
		if it.CartID == cartID {
			return i
		}
	}
	return -1
}

// Quantity of productID/variantID, 0 when absent.
func (s CartState) Quantity(productID int64, variantID *int64) int {
	for _, it := range s.Items {
		if it.Matches(productID, variantID) {
			return it.Quantity
		}
	}
	return 0
}

// CartResponse is the GET /cart payload.
type CartResponse struct {
	Items []CartItem          `json:"items"`
	Total decimal.NullDecimal `json:"total"`
}

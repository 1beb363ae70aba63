package cart

import (
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrUnknownVariant = errors.New("product has no such variant")

// NewItem describes a product line the customer wants one more unit of.
type NewItem struct {
	ProductID       int64
	ProductName     string
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	ImageURL        *string
	VariantID       *int64
	VariantName     *string
	VariantPrice    decimal.NullDecimal
	VendorID        *int64
}

// ItemFromProduct builds the item for p, optionally for one of its variants.
func ItemFromProduct(p domain.Product, variantID *int64) (NewItem, error) {
	vendorID := p.VendorID
	item := NewItem{
		ProductID:       p.ProductID,
		ProductName:     p.ProductName,
		BasePrice:       p.BasePrice,
		DiscountedPrice: p.DiscountedPrice,
		ImageURL:        p.PrimaryImage(),
		VendorID:        &vendorID,
	}
	if variantID == nil {
		return item, nil
	}
	v, ok := p.Variant(*variantID)
	if !ok {
		return NewItem{}, ErrUnknownVariant
	}
	id, name := v.VariantID, v.VariantName
	item.VariantID = &id
	item.VariantName = &name
	item.VariantPrice = decimal.NewNullDecimal(v.VariantPrice)
	return item, nil
}

func (n NewItem) cartItem(id domain.ID) domain.CartItem {
	return domain.CartItem{
		CartID:          id,
		ProductID:       n.ProductID,
		ProductName:     n.ProductName,
		BasePrice:       n.BasePrice,
		DiscountedPrice: n.DiscountedPrice,
		ImageURL:        n.ImageURL,
		Quantity:        1,
		VariantID:       n.VariantID,
		VariantName:     n.VariantName,
		VariantPrice:    n.VariantPrice,
		VendorID:        n.VendorID,
	}
}

package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

type ProductVariant struct {
	VariantID     int64           `json:"variant_id"`
	VariantName   string          `json:"variant_name"`
	VariantPrice  decimal.Decimal `json:"variant_price"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
}

type ProductImage struct {
	ImageID   int64  `json:"image_id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

type Product struct {
	ProductID       int64               `json:"product_id"`
	VendorID        int64               `json:"vendor_id"`
	CategoryID      int64               `json:"category_id"`
	SubcategoryID   *int64              `json:"subcategory_id"`
	ProductName     string              `json:"product_name"`
	Description     string              `json:"description"`
	BasePrice       decimal.Decimal     `json:"base_price"`
	DiscountedPrice decimal.NullDecimal `json:"discounted_price"`
	SKU             string              `json:"sku"`
	Status          string              `json:"status"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
	StoreName       string              `json:"store_name"`
	CategoryName    string              `json:"category_name"`
	SubcategoryName *string             `json:"subcategory_name"`
	Variants        []ProductVariant    `json:"variants"`
	Images          []ProductImage      `json:"images"`
}

// PrimaryImage returns the primary image url, falling back to the first image.
func (p Product) PrimaryImage() *string {
	for _, img := range p.Images {
		if img.IsPrimary {
			u := img.ImageURL
			return &u
		}
	}
	if len(p.Images) > 0 {
		u := p.Images[0].ImageURL
		return &u
	}
	return nil
}

// Price is the discounted price when present, else the base price.
func (p Product) Price() decimal.Decimal {
	if p.DiscountedPrice.Valid {
		return p.DiscountedPrice.Decimal
	}
	return p.BasePrice
}

// Variant looks up a variant by id.
func (p Product) Variant(id int64) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.VariantID == id {
			return v, true
		}
	}
	return ProductVariant{}, false
}

type Category struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"imageUrl"`
	Level         int     `json:"level"`
	CreatedAt     string  `json:"createdAt"`
	Subcategories any     `json:"subcategories,omitempty"`
}

type Subcategory struct {
	SubcategoryID int64   `json:"subcategory_id"`
	CategoryID    int64   `json:"category_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"image_url"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type Banner struct {
	BannerID    int64   `json:"banner_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ImageURL    string  `json:"image_url"`
	RedirectURL *string `json:"redirect_url"`
	BannerType  string  `json:"banner_type"`
	IsActive    bool    `json:"is_active"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type SearchResult struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

// ProductSort values accepted by GET /products.
type ProductSort string

const (
	SortPriceLow  ProductSort = "price_low"
	SortPriceHigh ProductSort = "price_high"
	SortLatest    ProductSort = "latest"
)

// ProductFilter holds the optional listing filters. Zero values are omitted
// from the query string.
type ProductFilter struct {
	CategoryID      int64
	SubcategoryName string
	Search          string
	Pincode         string
	Sort            ProductSort
	Page            int
	Limit           int
}

func (f ProductFilter) Params() map[string]string {
	p := map[string]string{}
	if f.CategoryID != 0 {
		p["category_id"] = strconv.FormatInt(f.CategoryID, 10)
	}
	if f.SubcategoryName != "" {
		p["subcategory_name"] = f.SubcategoryName
	}
	if f.Search != "" {
		p["search"] = f.Search
	}
	if f.Pincode != "" {
		p["pincode"] = f.Pincode
	}
	if f.Sort != "" {
		p["sort"] = string(f.Sort)
	}
	if f.Page > 0 {
		p["page"] = strconv.Itoa(f.Page)
	}
	if f.Limit > 0 {
		p["limit"] = strconv.Itoa(f.Limit)
	}
	return p
}

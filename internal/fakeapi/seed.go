package fakeapi

import (
	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const seedTime = "2024-01-01T00:00:00Z"

// SeedPincodes are the pincodes the demo catalog delivers to.
var SeedPincodes = []string{"560001", "560034", "110001"}

func seed(s *MemoryStore) {
	for _, pin := range SeedPincodes {
		s.serviceable[pin] = true
	}

	s.categories = []domain.Category{
		{ID: 1, Name: "Fresh Fruits", ImageURL: strPtr("https://images.unsplash.com/photo-1610832958506-aa56368176cf?w=400"), Level: 1, CreatedAt: seedTime},
		{ID: 2, Name: "Grains & Rice", ImageURL: strPtr("https://images.unsplash.com/photo-1574323347407-f5e1ad6d020b?w=400"), Level: 1, CreatedAt: seedTime},
		{ID: 3, Name: "Fresh Vegetables", ImageURL: strPtr("https://images.unsplash.com/photo-1542838132-92c53300491e?w=400"), Level: 1, CreatedAt: seedTime},
		{ID: 4, Name: "Dairy Products", ImageURL: strPtr("https://images.unsplash.com/photo-1563636619-e9143da7973b?w=400"), Level: 1, CreatedAt: seedTime},
	}

	s.subcategories = []domain.Subcategory{
		{SubcategoryID: 1, CategoryID: 1, Name: "Tropical Fruits", Status: "active", CreatedAt: seedTime, UpdatedAt: seedTime},
		{SubcategoryID: 2, CategoryID: 2, Name: "Rice", Status: "active", CreatedAt: seedTime, UpdatedAt: seedTime},
		{SubcategoryID: 3, CategoryID: 3, Name: "Fresh Vegetables", Status: "active", CreatedAt: seedTime, UpdatedAt: seedTime},
		{SubcategoryID: 4, CategoryID: 4, Name: "Milk", Status: "active", CreatedAt: seedTime, UpdatedAt: seedTime},
	}

	s.banners = []domain.Banner{
		{BannerID: 1, Title: "Fresh Groceries Delivered Daily", ImageURL: "https://images.unsplash.com/photo-1542838132-92c53300491e?w=1200", BannerType: "home_slider", IsActive: true, StartDate: seedTime, EndDate: "2030-12-31T23:59:59Z", CreatedAt: seedTime, UpdatedAt: seedTime},
		{BannerID: 2, Title: "Flash Sale - 50% Off!", ImageURL: "https://images.unsplash.com/photo-1607083206968-13611e3d76db?w=800", RedirectURL: strPtr("/flash-sale"), BannerType: "flash_sale", IsActive: true, StartDate: seedTime, EndDate: "2030-12-31T23:59:59Z", CreatedAt: seedTime, UpdatedAt: seedTime},
		{BannerID: 3, Title: "Premium Quality Products", ImageURL: "https://images.unsplash.com/photo-1542838132-92c53300491e?w=800", RedirectURL: strPtr("/featured"), BannerType: "featured", IsActive: true, StartDate: seedTime, EndDate: "2030-12-31T23:59:59Z", CreatedAt: seedTime, UpdatedAt: seedTime},
	}

	products := []domain.Product{
		product(1, 1, 1, 1, "Fresh Organic Bananas", "Sweet and ripe organic bananas", "2.99", "2.49", "Tropical Fruits", "2024-01-01T00:00:00Z"),
		product(2, 1, 2, 2, "Premium Basmati Rice", "Long grain aromatic basmati rice", "12.99", "", "Rice", "2024-01-02T00:00:00Z"),
		product(3, 2, 3, 3, "Fresh Tomatoes", "Red ripe tomatoes", "4.99", "3.49", "Fresh Vegetables", "2024-01-03T00:00:00Z"),
		product(4, 2, 4, 4, "Toned Milk", "Pasteurised toned milk", "1.20", "", "Milk", "2024-01-04T00:00:00Z"),
		product(5, 1, 1, 1, "Alphonso Mangoes", "Hand picked Alphonso mangoes", "9.99", "8.99", "Tropical Fruits", "2024-01-05T00:00:00Z"),
		product(6, 2, 3, 3, "Red Onions", "Crisp red onions", "1.99", "", "Fresh Vegetables", "2024-01-06T00:00:00Z"),
	}
	products[1].Variants = []domain.ProductVariant{
		{VariantID: 21, VariantName: "1 kg", VariantPrice: decimal.RequireFromString("12.99"), StockQuantity: 40, SKU: "GRAIN001-1"},
		{VariantID: 22, VariantName: "5 kg", VariantPrice: decimal.RequireFromString("59.99"), StockQuantity: 15, SKU: "GRAIN001-5"},
	}
	products[3].Variants = []domain.ProductVariant{
		{VariantID: 41, VariantName: "500 ml", VariantPrice: decimal.RequireFromString("0.65"), StockQuantity: 100, SKU: "DAIRY001-500"},
		{VariantID: 42, VariantName: "1 l", VariantPrice: decimal.RequireFromString("1.20"), StockQuantity: 100, SKU: "DAIRY001-1000"},
	}

	for _, p := range products {
		s.products[p.ProductID] = p
		s.productOrder = append(s.productOrder, p.ProductID)
	}
}

func product(id, vendorID, categoryID, subcategoryID int64, name, desc, base, discounted, subcategory, created string) domain.Product {
	p := domain.Product{
		ProductID:       id,
		VendorID:        vendorID,
		CategoryID:      categoryID,
		SubcategoryID:   &subcategoryID,
		ProductName:     name,
		Description:     desc,
		BasePrice:       decimal.RequireFromString(base),
		SKU:             "SKU" + domain.IDFromInt(id).String(),
		Status:          "active",
		CreatedAt:       created,
		UpdatedAt:       created,
		StoreName:       "Neighbourhood Kirana",
		SubcategoryName: &subcategory,
		Variants:        []domain.ProductVariant{},
		Images: []domain.ProductImage{
			{ImageID: id, ImageURL: "https://images.example.com/products/" + domain.IDFromInt(id).String() + ".jpg", IsPrimary: true},
		},
	}
	if discounted != "" {
		p.DiscountedPrice = decimal.NewNullDecimal(decimal.RequireFromString(discounted))
	}
	return p
}

func strPtr(s string) *string {
	return &s
}

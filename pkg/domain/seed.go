package domain

import "github.com/shopspring/decimal"

// SeedProducts returns the fixed demonstration catalog loaded when no usable
// persisted state exists. The persistence bridge falls back to this set
// whenever the stored document is absent, malformed, or has an empty product
// collection.
func SeedProducts() []Product {
	return []Product{
		{
			ID:           "prod_1",
			Name:         "Organic Green Tea",
			SKU:          "OGT-001",
			Category:     "Beverages",
			Price:        decimal.RequireFromString("12.99"),
			Quantity:     85,
			ReorderLevel: 20,
		},
		{
			ID:           "prod_2",
			Name:         "Artisan Sourdough Bread",
			SKU:          "ASB-002",
			Category:     "Bakery",
			Price:        decimal.RequireFromString("6.50"),
			Quantity:     15,
			ReorderLevel: 10,
		},
		{
			ID:           "prod_3",
			Name:         "Handmade Coffee Mug",
			SKU:          "HCM-003",
			Category:     "Homeware",
			Price:        decimal.RequireFromString("25.00"),
			Quantity:     40,
			ReorderLevel: 15,
		},
		{
			ID:           "prod_4",
			Name:         "Gourmet Chocolate Bar",
			SKU:          "GCB-004",
			Category:     "Confectionery",
			Price:        decimal.RequireFromString("8.99"),
			Quantity:     120,
			ReorderLevel: 30,
		},
		{
			ID:           "prod_5",
			Name:         "Eco-friendly Tote Bag",
			SKU:          "ETB-005",
			Category:     "Accessories",
			Price:        decimal.RequireFromString("18.00"),
			Quantity:     8,
			ReorderLevel: 10,
		},
	}
}

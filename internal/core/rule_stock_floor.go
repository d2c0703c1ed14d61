package core

import (
	"context"
	"fmt"

	"bizflow/pkg/domain"
)

// NewStockFloorRule returns the default in-transaction rule blocking any
// commit that would leave a product with negative stock.
func NewStockFloorRule() domain.Rule {
	return stockFloorRule{}
}

type stockFloorRule struct{}

func (stockFloorRule) Name() string { return "stock_floor" }

func (stockFloorRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, product := range view.ListProducts() {
		if product.Quantity < 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "stock_floor",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("product %s (%s) stock would go negative: %d", product.Name, product.ID, product.Quantity),
				Entity:   domain.EntityProduct,
				EntityID: product.ID,
			})
		}
	}
	return res, nil
}

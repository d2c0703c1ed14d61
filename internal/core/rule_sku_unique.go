package core

import (
	"context"
	"fmt"
	"strings"

	"bizflow/pkg/domain"
)

// NewSKUUniqueRule returns a warn-only rule flagging duplicate SKUs in the
// catalog. Duplicates commit; the violation surfaces in the result so callers
// can flag them to the operator.
func NewSKUUniqueRule() domain.Rule {
	return skuUniqueRule{}
}

type skuUniqueRule struct{}

func (skuUniqueRule) Name() string { return "sku_unique" }

func (skuUniqueRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	seen := make(map[string]string)
	res := domain.Result{}
	for _, product := range view.ListProducts() {
		sku := strings.TrimSpace(strings.ToLower(product.SKU))
		if sku == "" {
			continue
		}
		if firstID, ok := seen[sku]; ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "sku_unique",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("sku %s duplicated by products %s and %s", product.SKU, firstID, product.ID),
				Entity:   domain.EntityProduct,
				EntityID: product.ID,
			})
			continue
		}
		seen[sku] = product.ID
	}
	return res, nil
}

package service

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/entoun8/alshami-store/pkg/cart/domain/model"
)

// Pricing rules: flat-rate shipping below the free threshold, flat tax
// on the items subtotal. Each component is rounded half away from zero
// to two decimals before it enters the grand total.
var (
	freeShippingThreshold = decimal.NewFromInt(100)
	shippingFlatRate      = decimal.NewFromInt(10)
	taxRate               = decimal.RequireFromString("0.15")
)

// ComputeTotals is the pricing kernel: a pure function of the line-item
// snapshots. Prices travel as strings and are parsed to decimals only
// here.
func ComputeTotals(items []model.Item) (model.Totals, error) {
	itemsTotal := decimal.Zero
	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return model.Totals{}, errors.Wrapf(err, "parse price for product %s", item.ProductID)
		}
		itemsTotal = itemsTotal.Add(price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	itemsTotal = itemsTotal.Round(2)

	shipping := shippingFlatRate
	if itemsTotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := itemsTotal.Mul(taxRate).Round(2)
	grand := itemsTotal.Add(shipping).Add(tax).Round(2)

	return model.Totals{
		Items:    itemsTotal.StringFixed(2),
		Shipping: shipping.StringFixed(2),
		Tax:      tax.StringFixed(2),
		Grand:    grand.StringFixed(2),
	}, nil
}

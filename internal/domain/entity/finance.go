package entity

import "github.com/shopspring/decimal"

// Financial aggregation is pure and side-effect free. Totals are persisted
// at the triggering transition (procurement submit, invoice create) and the
// same functions are used anywhere a total is displayed, so persisted and
// rendered values cannot drift.

// ProcurementTotal sums estimatedCost × quantity over the items. A nil
// estimated cost counts as zero.
func ProcurementTotal(items []*ProcurementItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.EstimatedCost == nil {
			continue
		}
		total = total.Add(item.EstimatedCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// InvoiceSubtotal sums quantity × rate over the line items
func InvoiceSubtotal(lines []*InvoiceLineItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Rate.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

// InvoiceTotal is subtotal + tax
func InvoiceTotal(subtotal, tax decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax)
}

// LineAmount is the stored per-line amount, quantity × rate
func LineAmount(quantity int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(quantity)))
}

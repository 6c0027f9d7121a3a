package services

import "github.com/Hecoloko/procurement-app-sub000/internal/models"

// EffectiveLineTotal returns the amount a line item contributes to its
// cart's total: the stored total when nonzero, otherwise quantity times
// unit price when both are positive, otherwise zero. A stored nonzero
// total is an explicit override and always wins.
func EffectiveLineTotal(item models.CartItem) float64 {
	if item.TotalPrice != 0 {
		return item.TotalPrice
	}
	if item.Quantity > 0 && item.UnitPrice > 0 {
		return float64(item.Quantity) * item.UnitPrice
	}
	return 0
}

// RecomputeTotals derives a cart's cached aggregate pair from its current
// items. The item count is the number of line items, not the sum of
// quantities.
func RecomputeTotals(items []models.CartItem) (itemCount int, totalCost float64) {
	itemCount = len(items)
	for _, item := range items {
		totalCost += EffectiveLineTotal(item)
	}
	return itemCount, totalCost
}

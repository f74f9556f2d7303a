package service

import "github.com/nikolayk812/storefront-core/internal/domain"

// StockAlertPolicy decides whether a stock level reached by a decrement deserves a signal.
// It never delivers anything.
type StockAlertPolicy struct {
	Threshold int
}

func NewStockAlertPolicy(threshold int) StockAlertPolicy {
	return StockAlertPolicy{Threshold: threshold}
}

// AfterDecrement is evaluated once per checkout line against the stock left after that line.
func (p StockAlertPolicy) AfterDecrement(product domain.Product, newStock int) (domain.StockSignal, bool) {
	var kind domain.StockSignalKind

	switch {
	case newStock == 0:
		kind = domain.SignalSoldOut
	case newStock > 0 && newStock <= p.Threshold:
		kind = domain.SignalLowStock
	default:
		return domain.StockSignal{}, false
	}

	return domain.StockSignal{
		Kind:          kind,
		ProductID:     product.ID,
		ProductName:   product.Name,
		StockQuantity: newStock,
		Threshold:     p.Threshold,
	}, true
}

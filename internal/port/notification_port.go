package port

import (
	"context"

	"github.com/nikolayk812/storefront-core/internal/domain"
)

type StockNotifier interface {
	NotifyStock(ctx context.Context, signal domain.StockSignal) error
}

// SignalDispatcher hands stock signals to delivery without blocking the caller.
type SignalDispatcher interface {
	Dispatch(signals ...domain.StockSignal)
}

type ReportPublisher interface {
	PublishReport(ctx context.Context, report domain.SalesReport) error
}

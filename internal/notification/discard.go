package notification

import (
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"go.uber.org/zap"
)

// Discard stands in for the dispatcher when stock notifications are switched off.
type Discard struct {
	logger *zap.Logger
}

var _ port.SignalDispatcher = Discard{}

func NewDiscard(logger *zap.Logger) Discard {
	return Discard{logger: logger.Named("notification")}
}

func (d Discard) Dispatch(signals ...domain.StockSignal) {
	for _, signal := range signals {
		d.logger.Warn("stock notifications are disabled",
			zap.String("kind", string(signal.Kind)),
			zap.Stringer("product_id", signal.ProductID),
			zap.Int("stock_quantity", signal.StockQuantity),
		)
	}
}

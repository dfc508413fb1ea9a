package feed

import (
	"context"

	"trade-journal-go/internal/models"
)

// TradeFeed supplies one sync batch of trades for a symbol, ordered by
// execution time. since is an epoch-millis cursor; only trades strictly
// after it are returned. Where the trades come from (exchange poll, CSV
// export) is the feed's business.
type TradeFeed interface {
	FetchTrades(ctx context.Context, symbol string, since int64) ([]models.Trade, error)
}

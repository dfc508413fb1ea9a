package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"trade-journal-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CSVFeed reads trades from an exchange export file. It implements the
// TradeFeed interface so the engine can sync from a file instead of a
// live API.
//
// Expected header: trade_id,symbol,side,ts,price,qty,fee,fee_asset.
// qty, fee and fee_asset are optional columns.
type CSVFeed struct {
	path     string
	exchange string
	logger   *zap.Logger
}

var _ TradeFeed = (*CSVFeed)(nil)

// NewCSVFeed creates a feed over the given export file.
func NewCSVFeed(path, exchange string, logger *zap.Logger) *CSVFeed {
	return &CSVFeed{path: path, exchange: exchange, logger: logger}
}

// FetchTrades reads the whole file and returns the trades for symbol
// after the since cursor, in execution order. Malformed rows are logged
// and skipped.
func (f *CSVFeed) FetchTrades(ctx context.Context, symbol string, since int64) ([]models.Trade, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade export: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // optional trailing columns

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read export header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"trade_id", "symbol", "side", "ts", "price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("export header missing column %q", required)
		}
	}

	var trades []models.Trade
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read export row: %w", err)
		}

		trade, err := f.parseRow(record, col)
		if err != nil {
			f.logger.Warn("Skipping malformed export row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if trade.Symbol != symbol || trade.Timestamp <= since {
			continue
		}
		trades = append(trades, trade)
	}

	sort.Slice(trades, func(i, j int) bool { return trades[i].Timestamp < trades[j].Timestamp })

	return trades, nil
}

func (f *CSVFeed) parseRow(record []string, col map[string]int) (models.Trade, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ts, err := strconv.ParseInt(field("ts"), 10, 64)
	if err != nil {
		return models.Trade{}, fmt.Errorf("bad ts %q: %w", field("ts"), err)
	}

	price, err := decimal.NewFromString(field("price"))
	if err != nil {
		return models.Trade{}, fmt.Errorf("bad price %q: %w", field("price"), err)
	}

	side := strings.ToLower(field("side"))
	if side != "buy" && side != "sell" {
		return models.Trade{}, fmt.Errorf("bad side %q", field("side"))
	}

	trade := models.Trade{
		Exchange:  f.exchange,
		TradeID:   field("trade_id"),
		Symbol:    field("symbol"),
		Side:      side,
		Timestamp: ts,
		Price:     price.InexactFloat64(),
		FeeAsset:  field("fee_asset"),
	}
	if qty, err := decimal.NewFromString(field("qty")); err == nil {
		trade.Quantity = qty.InexactFloat64()
	}
	if fee, err := decimal.NewFromString(field("fee")); err == nil {
		trade.Fee = fee.InexactFloat64()
	}

	return trade, nil
}

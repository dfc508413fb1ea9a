package feed

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const recvWindow = "5000" // How long a signed request is valid, in milliseconds

// ExchangeFeed polls the exchange's account trade-history endpoint.
// It implements the TradeFeed interface.
type ExchangeFeed struct {
	client    *resty.Client
	apiKey    string
	secretKey string
	exchange  string
	logger    *zap.Logger
	limiter   *rate.Limiter
}

// ensure ExchangeFeed implements the interface
var _ TradeFeed = (*ExchangeFeed)(nil)

// NewExchangeFeed creates a trade feed backed by the exchange REST API.
func NewExchangeFeed(cfg *config.Exchange, logger *zap.Logger) *ExchangeFeed {
	client := resty.New().SetBaseURL(cfg.BaseURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &ExchangeFeed{
		client:    client,
		apiKey:    cfg.ApiKey,
		secretKey: cfg.SecretKey,
		exchange:  cfg.Name,
		logger:    logger,
		limiter:   limiter,
	}
}

// sign creates a HMAC-SHA256 signature for the request.
func (f *ExchangeFeed) sign(data string) string {
	h := hmac.New(sha256.New, []byte(f.secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// exchangeTrade is the wire shape of one execution in the myTrades
// response. Numeric fields arrive as strings.
type exchangeTrade struct {
	ID              int64  `json:"id"`
	Symbol          string `json:"symbol"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
}

// FetchTrades pulls executions for symbol after the since cursor. A trade
// with an unparseable price is logged and skipped rather than failing the
// poll; the rest of the page still imports.
func (f *ExchangeFeed) FetchTrades(ctx context.Context, symbol string, since int64) ([]models.Trade, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	if since > 0 {
		params.Set("startTime", strconv.FormatInt(since+1, 10))
	}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", recvWindow)

	queryString := params.Encode()
	params.Set("signature", f.sign(queryString))

	var raw []exchangeTrade
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", f.apiKey).
		SetQueryParamsFromValues(params).
		SetResult(&raw).
		Get("/myTrades")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trades for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("trade history request failed with status %s: %s", resp.Status(), resp.String())
	}

	trades := make([]models.Trade, 0, len(raw))
	for _, rt := range raw {
		trade, err := f.normalize(rt)
		if err != nil {
			f.logger.Warn("Skipping malformed exchange trade",
				zap.Int64("trade_id", rt.ID),
				zap.String("symbol", rt.Symbol),
				zap.Error(err),
			)
			continue
		}
		if trade.Timestamp <= since {
			continue
		}
		trades = append(trades, trade)
	}

	// The synchronizer relies on caller order; make it execution order.
	sort.Slice(trades, func(i, j int) bool { return trades[i].Timestamp < trades[j].Timestamp })

	return trades, nil
}

// normalize converts a wire trade into the ledger shape. Prices and
// quantities are parsed through decimal so "42000.50" survives exactly
// before the final float conversion.
func (f *ExchangeFeed) normalize(rt exchangeTrade) (models.Trade, error) {
	price, err := decimal.NewFromString(rt.Price)
	if err != nil {
		return models.Trade{}, fmt.Errorf("bad price %q: %w", rt.Price, err)
	}

	trade := models.Trade{
		Exchange:  f.exchange,
		TradeID:   strconv.FormatInt(rt.ID, 10),
		Symbol:    rt.Symbol,
		Side:      "sell",
		Timestamp: rt.Time,
		Price:     price.InexactFloat64(),
		FeeAsset:  rt.CommissionAsset,
	}
	if rt.IsBuyer {
		trade.Side = "buy"
	}

	// Optional fields; a missing or malformed qty is not worth losing
	// the trade over.
	if qty, err := decimal.NewFromString(rt.Qty); err == nil {
		trade.Quantity = qty.InexactFloat64()
	}
	if fee, err := decimal.NewFromString(rt.Commission); err == nil {
		trade.Fee = fee.InexactFloat64()
	}

	return trade, nil
}

package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func setupExchangeFeed(handler http.Handler) (*ExchangeFeed, *httptest.Server) {
	server := httptest.NewServer(handler)

	f := &ExchangeFeed{
		client:    resty.New().SetBaseURL(server.URL),
		apiKey:    "test_api_key",
		secretKey: "test_secret_key",
		exchange:  "binance",
		logger:    zap.NewNop(),
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}

	return f, server
}

func TestExchangeFeed_FetchTrades(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/myTrades", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test_api_key", r.Header.Get("X-MBX-APIKEY"))
		assert.NotEmpty(t, r.URL.Query().Get("signature"))
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":2,"symbol":"BTCUSDT","price":"42100.25","qty":"0.5","commission":"0.1","commissionAsset":"USDT","time":1700000060000,"isBuyer":false},
			{"id":1,"symbol":"BTCUSDT","price":"42000.50","qty":"0.25","commission":"0","commissionAsset":"USDT","time":1700000000000,"isBuyer":true}
		]`))
	})

	f, server := setupExchangeFeed(handler)
	defer server.Close()

	trades, err := f.FetchTrades(context.Background(), "BTCUSDT", 0)

	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "1", trades[0].TradeID)
	assert.Equal(t, "buy", trades[0].Side)
	assert.Equal(t, 42000.5, trades[0].Price)
	assert.Equal(t, "binance", trades[0].Exchange)

	assert.Equal(t, "2", trades[1].TradeID)
	assert.Equal(t, "sell", trades[1].Side)
	assert.Equal(t, "USDT", trades[1].FeeAsset)
}

func TestExchangeFeed_CursorFiltersAndPassesStartTime(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1700000000001", r.URL.Query().Get("startTime"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"symbol":"BTCUSDT","price":"42000.50","qty":"0.25","time":1700000000000,"isBuyer":true},
			{"id":2,"symbol":"BTCUSDT","price":"42100.25","qty":"0.5","time":1700000060000,"isBuyer":false}
		]`))
	})

	f, server := setupExchangeFeed(handler)
	defer server.Close()

	trades, err := f.FetchTrades(context.Background(), "BTCUSDT", 1700000000000)

	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "2", trades[0].TradeID)
}

func TestExchangeFeed_SkipsBadPriceKeepsRest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"symbol":"BTCUSDT","price":"","time":1700000000000,"isBuyer":true},
			{"id":2,"symbol":"BTCUSDT","price":"42100.25","time":1700000060000,"isBuyer":false}
		]`))
	})

	f, server := setupExchangeFeed(handler)
	defer server.Close()

	trades, err := f.FetchTrades(context.Background(), "BTCUSDT", 0)

	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "2", trades[0].TradeID)
}

func TestExchangeFeed_APIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"code":-1021,"msg":"Timestamp out of recv window"}`))
	})

	f, server := setupExchangeFeed(handler)
	defer server.Close()

	_, err := f.FetchTrades(context.Background(), "BTCUSDT", 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trade history request failed")
}

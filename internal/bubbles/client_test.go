package bubbles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trade-journal-go/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		token:   "test_token",
		logger:  zap.NewNop(), // Use a no-op logger for tests
		limiter: rate.NewLimiter(rate.Inf, 1),
	}

	return c, server
}

func TestListAnnotations(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/bubbles", r.URL.Path)
			assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
			assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"b1","symbol":"BTCUSDT","timeframe":"1h","ts":1700000000000,"price":42000.5}]`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		annotations, err := c.ListAnnotations(context.Background(), "BTCUSDT")

		require.NoError(t, err)
		require.Len(t, annotations, 1)
		assert.Equal(t, "b1", annotations[0].ID)
		assert.Equal(t, int64(1700000000000), annotations[0].Timestamp)
	})

	t.Run("APIError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"bad token"}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		annotations, err := c.ListAnnotations(context.Background(), "BTCUSDT")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list annotations")
		assert.Nil(t, annotations)
	})
}

func TestCreateAnnotation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bubbles", r.URL.Path)

		var payload models.Annotation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "BTCUSDT", payload.Symbol)

		payload.ID = "b42"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	created, err := c.CreateAnnotation(context.Background(), models.Annotation{
		Symbol: "BTCUSDT", Timeframe: "1h", Timestamp: 1700000000000, Price: 42000.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "b42", created.ID)
	assert.Equal(t, 42000.5, created.Price)
}

func TestUpdateAnnotation(t *testing.T) {
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/bubbles/b42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	err := c.UpdateAnnotation(context.Background(), "b42", models.AnnotationPatch{Note: "filled"})

	require.NoError(t, err)
	// Merge patch carries only the populated fields.
	assert.Equal(t, map[string]any{"note": "filled"}, gotBody)
}

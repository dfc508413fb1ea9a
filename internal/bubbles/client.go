package bubbles

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// StoreClient is the remote annotation store capability the sync pipeline
// consumes. Failures are transport errors; callers decide whether a failed
// item is fatal (it never is, for sync).
type StoreClient interface {
	ListAnnotations(ctx context.Context, symbol string) ([]models.Annotation, error)
	CreateAnnotation(ctx context.Context, payload models.Annotation) (*models.Annotation, error)
	UpdateAnnotation(ctx context.Context, id string, patch models.AnnotationPatch) error
}

// Client is a REST client for the journal backend's bubble API.
// It implements the StoreClient interface.
type Client struct {
	client  *resty.Client
	token   string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ StoreClient = (*Client)(nil)

// NewClient creates a new annotation store client.
func NewClient(cfg *config.Store, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		token:   cfg.Token,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing store request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Store request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// newRequest builds a request with auth and content headers applied.
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if c.token != "" {
		req.SetHeader("Authorization", "Bearer "+c.token)
	}
	return req
}

// ListAnnotations fetches all bubbles for a symbol. The synchronizer takes
// this as its authoritative snapshot at the start of a batch.
func (c *Client) ListAnnotations(ctx context.Context, symbol string) ([]models.Annotation, error) {
	var annotations []models.Annotation

	req := c.newRequest(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&annotations)

	_, err := c.doRequest(ctx, "GET", "/api/v1/bubbles", req)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations for %s: %w", symbol, err)
	}

	return annotations, nil
}

// CreateAnnotation creates a new bubble and returns the stored record,
// including the store-assigned ID.
func (c *Client) CreateAnnotation(ctx context.Context, payload models.Annotation) (*models.Annotation, error) {
	var created models.Annotation

	req := c.newRequest(ctx).
		SetBody(payload).
		SetResult(&created)

	_, err := c.doRequest(ctx, "POST", "/api/v1/bubbles", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation: %w", err)
	}

	return &created, nil
}

// UpdateAnnotation applies a merge patch to an existing bubble. Fields
// absent from the patch are left untouched by the store.
func (c *Client) UpdateAnnotation(ctx context.Context, id string, patch models.AnnotationPatch) error {
	req := c.newRequest(ctx).SetBody(patch)

	_, err := c.doRequest(ctx, "PATCH", "/api/v1/bubbles/"+id, req)
	if err != nil {
		return fmt.Errorf("failed to update annotation %s: %w", id, err)
	}

	return nil
}

package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client provides marketplace API access with rate limiting and
// circuit breaking. Retry and backoff live here, not in the
// aggregation layer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	backoff    time.Duration
}

// Config holds marketplace client configuration
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	Burst          int
	MaxRetries     int
	RetryBackoff   time.Duration
	UserAgent      string
}

// NewClient creates a marketplace API client
func NewClient(config Config) *Client {
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 10 * time.Second
	}
	if config.RateLimitRPS == 0 {
		config.RateLimitRPS = 2.0
	}
	if config.Burst == 0 {
		config.Burst = 4
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 2
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 500 * time.Millisecond
	}
	if config.UserAgent == "" {
		config.UserAgent = "nftdepth/1.0"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "marketplace",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("marketplace circuit breaker state change")
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		baseURL:    config.BaseURL,
		userAgent:  config.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.Burst),
		breaker:    breaker,
		maxRetries: config.MaxRetries,
		backoff:    config.RetryBackoff,
	}
}

// GetListings retrieves active listings for a collection, cheapest
// first, up to limit entries.
func (c *Client) GetListings(ctx context.Context, collectionID string, limit int) ([]RawListing, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/listings", c.baseURL, url.PathEscape(collectionID))

	var resp listingsResponse
	if err := c.getJSON(ctx, endpoint, limit, &resp); err != nil {
		return nil, fmt.Errorf("get listings: %w", err)
	}

	log.Debug().
		Str("collection", collectionID).
		Int("listings", len(resp.Listings)).
		Msg("marketplace listings retrieved")

	return resp.Listings, nil
}

// GetOffers retrieves unfilled collection offers with remaining
// quantities, highest first, up to limit entries.
func (c *Client) GetOffers(ctx context.Context, collectionID string, limit int) ([]RawOffer, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/offers", c.baseURL, url.PathEscape(collectionID))

	var resp offersResponse
	if err := c.getJSON(ctx, endpoint, limit, &resp); err != nil {
		return nil, fmt.Errorf("get offers: %w", err)
	}

	log.Debug().
		Str("collection", collectionID).
		Int("offers", len(resp.Offers)).
		Msg("marketplace offers retrieved")

	return resp.Offers, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, limit int, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = endpoint + "?" + params.Encode()
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doWithRetry(ctx, reqURL)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		body, err := c.makeRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Debug().Err(err).Str("url", reqURL).Int("attempt", attempt+1).Msg("marketplace request failed")
	}
	return nil, lastErr
}

func (c *Client) makeRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Package igdb implements the external game catalog client.
package igdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"game-search-service/internal/domain"
)

// Endpoint is the API path for game queries.
const Endpoint = "/games"

// MaxBatchSize is the largest id list the catalog accepts in one query.
const MaxBatchSize = 500

// ErrUnexpectedStatus is wrapped by every non-2xx response error.
var ErrUnexpectedStatus = errors.New("unexpected igdb status")

// Config holds configuration for the catalog client.
type Config struct {
	BaseURL     string
	ClientID    string
	AccessToken string
	Timeout     time.Duration

	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration

	RequestsPerSecond float64 // 0 = unlimited
	Burst             int
	BatchSize         int
}

// WithoutRetries returns a copy of the config that makes a single attempt per
// request. Search fallback calls use it: the guard, not the client, decides
// whether to try again.
func (c Config) WithoutRetries() Config {
	c.RetryCount = 0
	return c
}

// Client implements domain.Catalog and domain.CatalogFetcher.
type Client struct {
	client    *resty.Client
	limiter   *rate.Limiter
	batchSize int
	logger    *zap.Logger
}

// New creates a new catalog client.
func New(cfg Config, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Client-ID", cfg.ClientID).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry on network errors, throttling or 5xx status codes
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := max(cfg.Burst, 1)

	batch := cfg.BatchSize
	if batch <= 0 || batch > MaxBatchSize {
		batch = MaxBatchSize
	}

	return &Client{
		client:    client,
		limiter:   rate.NewLimiter(limit, burst),
		batchSize: batch,
		logger:    logger,
	}
}

// SearchByText runs a full-text catalog search.
func (c *Client) SearchByText(ctx context.Context, query string, limit int) ([]*domain.Game, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	limit = min(limit, MaxBatchSize)

	body := fmt.Sprintf("search \"%s\"; fields %s; limit %d;", quote(query), gameFields, limit)
	items, err := c.post(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("searching igdb for %q: %w", query, err)
	}

	games := toDomain(items)
	c.logger.Debug("igdb search completed",
		zap.String("query", query),
		zap.Int("count", len(games)),
	)

	return games, nil
}

// FetchByIDs loads catalog records by id, in chunks of the configured batch
// size. Unknown ids are silently absent from the result.
func (c *Client) FetchByIDs(ctx context.Context, ids []int64) ([]*domain.Game, error) {
	games := make([]*domain.Game, 0, len(ids))

	for start := 0; start < len(ids); start += c.batchSize {
		chunk := ids[start:min(start+c.batchSize, len(ids))]

		parts := make([]string, len(chunk))
		for i, id := range chunk {
			parts[i] = strconv.FormatInt(id, 10)
		}
		body := fmt.Sprintf("fields %s; where id = (%s); limit %d;",
			gameFields, strings.Join(parts, ","), len(chunk))

		items, err := c.post(ctx, body)
		if err != nil {
			return games, fmt.Errorf("fetching igdb ids %d..%d: %w", chunk[0], chunk[len(chunk)-1], err)
		}
		games = append(games, toDomain(items)...)
	}

	return games, nil
}

// BatchSize returns the effective id chunk size.
func (c *Client) BatchSize() int {
	return c.batchSize
}

func (c *Client) post(ctx context.Context, body string) ([]GameItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	var items []GameItem
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(body).
		SetResult(&items).
		Post(Endpoint)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	return items, nil
}

func toDomain(items []GameItem) []*domain.Game {
	games := make([]*domain.Game, 0, len(items))
	for i := range items {
		if items[i].Name == "" {
			continue
		}
		games = append(games, items[i].ToDomain())
	}
	return games
}

// quote escapes a value for use inside an APIcalypse string literal.
func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

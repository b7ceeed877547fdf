package blockfrost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bitbotScope/internal/model"
)

// Default configuration values.
const (
	DefaultBaseURL      = "https://cardano-mainnet.blockfrost.io/api/v0"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 10
	DefaultRateBurst    = 500
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = time.Second

	// pageSize is the largest page Blockfrost serves.
	pageSize = 100
)

// Options configures a Client.
type Options struct {
	BaseURL      string
	ProjectID    string
	Timeout      time.Duration
	RateLimit    float64
	RateBurst    int
	MaxRetries   int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Client is a minimal Blockfrost REST client for asset and metadata lookups.
type Client struct {
	baseURL      string
	projectID    string
	http         *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryBackoff time.Duration
}

// NewClient builds a Client, filling unset options with defaults.
func NewClient(opts Options) (*Client, error) {
	if opts.ProjectID == "" {
		return nil, fmt.Errorf("blockfrost project id is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Limit(opts.RateLimit)
	if opts.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:      baseURL,
		projectID:    opts.ProjectID,
		http:         httpClient,
		limiter:      rate.NewLimiter(limit, burst),
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
	}, nil
}

type policyAsset struct {
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
}

type assetTransaction struct {
	TxHash      string `json:"tx_hash"`
	TxIndex     int    `json:"tx_index"`
	BlockHeight int64  `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
}

// AssetsByPolicy returns one page (1-based) of asset ids minted under policy.
// An empty slice means there are no more pages.
func (c *Client) AssetsByPolicy(ctx context.Context, policy string, page int) ([]string, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	var assets []policyAsset
	err := c.get(ctx, "/assets/policy/"+url.PathEscape(policy), query, &assets)
	if err != nil {
		// Blockfrost answers 404 for a policy without assets.
		if errors.Is(err, ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(assets))
	for _, asset := range assets {
		ids = append(ids, asset.Asset)
	}
	return ids, nil
}

// AssetTransactions returns every transaction hash of the asset in chain order,
// following the API pagination until a short page is returned.
func (c *Client) AssetTransactions(ctx context.Context, assetID string) ([]string, error) {
	var hashes []string
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("count", strconv.Itoa(pageSize))
		query.Set("order", "asc")

		var txs []assetTransaction
		if err := c.get(ctx, "/assets/"+url.PathEscape(assetID)+"/transactions", query, &txs); err != nil {
			return nil, err
		}
		for _, tx := range txs {
			hashes = append(hashes, tx.TxHash)
		}
		if len(txs) < pageSize {
			return hashes, nil
		}
	}
}

// TransactionMetadata returns the metadata envelopes attached to a transaction.
func (c *Client) TransactionMetadata(ctx context.Context, txHash string) ([]model.MetadataEnvelope, error) {
	var envelopes []model.MetadataEnvelope
	if err := c.get(ctx, "/txs/"+url.PathEscape(txHash)+"/metadata", nil, &envelopes); err != nil {
		return nil, err
	}
	return envelopes, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		return c.do(ctx, path, query, out)
	})
}

func (c *Client) do(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("project_id", c.projectID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

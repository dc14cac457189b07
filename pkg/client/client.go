package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	harierrors "github.com/quality-match/hari-client-sub000/internal/errors"
	"github.com/quality-match/hari-client-sub000/internal/httpclient"
	"github.com/quality-match/hari-client-sub000/internal/logging"
	jsonx "github.com/quality-match/hari-client-sub000/internal/shared/json"
	"github.com/quality-match/hari-client-sub000/pkg/models"
)

const defaultMaxBodyBytes = 64 << 20 // bulk listings on large datasets get big

// Config configures the HARI API client.
type Config struct {
	BaseURL  string
	AuthURL  string
	ClientID string
	Username string
	Password string

	// Timeout applies per HTTP request. Zero selects the transport default.
	Timeout time.Duration
	// MaxBodyBytes caps response body reads. Zero selects a 64 MiB default;
	// negative disables the cap.
	MaxBodyBytes int64

	// Retry configures transport-level retries of transient failures.
	Retry        harierrors.RetryConfig
	DisableRetry bool
	// DisableCircuitBreaker turns off the circuit-breaker transport wrapper.
	DisableCircuitBreaker bool

	// SubsetCacheTTL bounds how long subset listings are memoized.
	SubsetCacheTTL time.Duration

	Logger logging.Logger
}

// Client is a typed HTTP wrapper around the HARI REST API with token refresh.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       *tokenProvider
	logger       logging.Logger
	retry        harierrors.RetryConfig
	retryEnabled bool
	bodyLimit    int64
	subsets      *subsetCache
}

// New builds a client from config. The credentials are only used lazily, on
// the first authenticated call.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if strings.TrimSpace(cfg.AuthURL) == "" {
		return nil, fmt.Errorf("auth url is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewComponentLogger("hari-client")
	}

	var httpClient *http.Client
	if cfg.DisableCircuitBreaker {
		httpClient = httpclient.New(cfg.Timeout)
	} else {
		httpClient = httpclient.NewWithCircuitBreaker(cfg.Timeout, "hari-api")
	}

	retry := cfg.Retry
	if retry.MaxAttempts == 0 && retry.BaseDelay == 0 {
		retry = harierrors.DefaultRetryConfig()
	}

	bodyLimit := cfg.MaxBodyBytes
	if bodyLimit == 0 {
		bodyLimit = defaultMaxBodyBytes
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   httpClient,
		tokens:       newTokenProvider(cfg.AuthURL, cfg.ClientID, cfg.Username, cfg.Password, cfg.Timeout, logger),
		logger:       logger,
		retry:        retry,
		retryEnabled: !cfg.DisableRetry,
		bodyLimit:    bodyLimit,
		subsets:      newSubsetCache(defaultSubsetCacheSize, cfg.SubsetCacheTTL),
	}, nil
}

// CreateMedias bulk-creates medias in a dataset.
func (c *Client) CreateMedias(ctx context.Context, datasetID string, items []models.BulkMediaCreate) (*models.BulkResponse, error) {
	var resp models.BulkResponse
	path := "/datasets/" + url.PathEscape(datasetID) + "/medias:bulk"
	if err := c.do(ctx, http.MethodPost, path, nil, items, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateMediaObjects bulk-creates media objects in a dataset.
func (c *Client) CreateMediaObjects(ctx context.Context, datasetID string, items []models.BulkMediaObjectCreate) (*models.BulkResponse, error) {
	var resp models.BulkResponse
	path := "/datasets/" + url.PathEscape(datasetID) + "/mediaObjects:bulk"
	if err := c.do(ctx, http.MethodPost, path, nil, items, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateAttributes bulk-creates attributes in a dataset.
func (c *Client) CreateAttributes(ctx context.Context, datasetID string, items []models.BulkAttributeCreate) (*models.BulkResponse, error) {
	var resp models.BulkResponse
	path := "/datasets/" + url.PathEscape(datasetID) + "/attributes:bulk"
	if err := c.do(ctx, http.MethodPost, path, nil, items, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMedias lists the medias of a dataset, projected to id and back reference.
func (c *Client) GetMedias(ctx context.Context, datasetID string) ([]models.MediaSummary, error) {
	var resp []models.MediaSummary
	path := "/datasets/" + url.PathEscape(datasetID) + "/medias"
	query := url.Values{"projection": {"id,back_reference"}}
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetMediaObjects lists the media objects of a dataset, projected to id and
// back reference.
func (c *Client) GetMediaObjects(ctx context.Context, datasetID string) ([]models.MediaObjectSummary, error) {
	var resp []models.MediaObjectSummary
	path := "/datasets/" + url.PathEscape(datasetID) + "/mediaObjects"
	query := url.Values{"projection": {"id,media_id,back_reference"}}
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSubsets lists the subsets of a dataset. Results are memoized briefly;
// CreateSubset invalidates the entry.
func (c *Client) GetSubsets(ctx context.Context, datasetID string) ([]models.Subset, error) {
	if cached, ok := c.subsets.get(datasetID); ok {
		c.logger.Debug("Subset listing for dataset %s served from cache", datasetID)
		return cached, nil
	}

	var resp []models.Subset
	path := "/datasets/" + url.PathEscape(datasetID) + "/subsets"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	c.subsets.put(datasetID, resp)
	return resp, nil
}

type subsetCreateRequest struct {
	Name       string            `json:"name"`
	SubsetType models.SubsetType `json:"subset_type"`
}

type subsetCreateResponse struct {
	ID string `json:"id"`
}

// CreateSubset creates a subset and returns its id.
func (c *Client) CreateSubset(ctx context.Context, datasetID string, subsetType models.SubsetType, name string) (string, error) {
	var resp subsetCreateResponse
	path := "/datasets/" + url.PathEscape(datasetID) + "/subsets"
	req := subsetCreateRequest{Name: name, SubsetType: subsetType}
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create subset %q: response contained no id", name)
	}
	c.subsets.invalidate(datasetID)
	return resp.ID, nil
}

// do performs one API call: encode, authenticate, send, classify, decode.
// Transient failures are retried at this level; the uploader never retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := jsonx.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = encoded
	}

	attempt := func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.doOnce(ctx, method, path, query, payload, out)
	}

	if !c.retryEnabled {
		_, err := attempt(ctx)
		return err
	}
	_, err := harierrors.RetryWithResultAndLog(ctx, c.retry, attempt, c.logger)
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader *bytes.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Debug("%s %s (%d bytes)", method, endpoint, len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("%s %s failed: %v", method, endpoint, err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httpclient.ReadAllWithLimit(resp.Body, c.bodyLimit)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("%s %s -> %d (%d bytes)", method, endpoint, resp.StatusCode, len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			// Token rejected before its communicated expiry.
			c.tokens.Invalidate()
		}
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(respBody),
			Body:       respBody,
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := jsonx.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractErrorMessage(body []byte) string {
	var probe struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := jsonx.Unmarshal(body, &probe); err != nil {
		return ""
	}
	if probe.Message != "" {
		return probe.Message
	}
	return probe.Detail
}

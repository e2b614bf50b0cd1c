package skillsmp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API endpoint paths.
const (
	EndpointSearch   = "/api/v1/skills/search"
	EndpointAISearch = "/api/v1/skills/ai-search"
)

// Client is the SkillsMP API client.
//
// It issues one GET per call, never retries, and does not branch on HTTP
// status: the envelope's own `success` field decides the outcome.
type Client struct {
	HTTPClient *http.Client

	baseURL   string
	apiKey    string
	userAgent string
	log       *slog.Logger
}

// NewClient constructs a client from a resolved Config. A nil logger
// disables logging.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "skillsmp-cli/dev"
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  ua,
		log:        log,
	}
}

// Search runs a keyword search. The error is non-nil only when the query
// itself is unusable, in which case nothing is sent.
func (c *Client) Search(ctx context.Context, q SearchQuery) (Result, error) {
	params, err := BuildQuery(KindKeyword, q)
	if err != nil {
		return Result{}, err
	}
	return c.FetchJSON(ctx, EndpointSearch, params), nil
}

// AISearch runs a semantic search for query.
func (c *Client) AISearch(ctx context.Context, query string) (Result, error) {
	params, err := BuildQuery(KindAI, SearchQuery{Keyword: query})
	if err != nil {
		return Result{}, err
	}
	return c.FetchJSON(ctx, EndpointAISearch, params), nil
}

// FetchJSON performs an authenticated GET on endpoint with params and decodes
// the JSON body. Transport and decode faults are folded into a FETCH_ERROR
// failure result.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, params url.Values) Result {
	if c.apiKey == "" {
		return Failure(CodeNoAPIKey, "API key is not configured (set SKILLSMP_API_KEY or run 'skillsmp setup')")
	}

	reqID := uuid.NewString()
	log := c.log.With("request_id", reqID, "endpoint", endpoint)

	fullURL, err := c.buildURL(endpoint, params)
	if err != nil {
		log.Warn("invalid request url", "error", err)
		return Failure(CodeFetchError, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		log.Warn("cannot build request", "error", err)
		return Failure(CodeFetchError, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err, "duration", time.Since(start))
		return Failure(CodeFetchError, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("cannot read response body", "status", resp.StatusCode, "error", err)
		return Failure(CodeFetchError, err.Error())
	}

	res, err := decodeResult(body)
	if err != nil {
		log.Warn("response is not JSON", "status", resp.StatusCode, "bytes", len(body), "error", err)
		return Failure(CodeFetchError, err.Error())
	}
	log.Debug("request completed",
		"status", resp.StatusCode,
		"success", res.Success,
		"duration", time.Since(start),
	)
	return res
}

func (c *Client) buildURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host are required", c.baseURL)
	}
	u.Path = path.Join("/", u.Path, endpoint)
	u.RawQuery = params.Encode()
	return u.String(), nil
}

package theoddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"DraftPulse/internal/domain/models"
	drepo "DraftPulse/internal/domain/repository"
	pkghttp "DraftPulse/pkg/http"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com/v4"
	userAgent      = "DraftPulse/1.0 (Draft Odds Tracker)"
	defaultTimeout = 10 * time.Second
)

// Draft markets are listed under varying sport keys between seasons.
var draftKeyHints = []string{"nfl_draft", "nfl_futures", "nfl_specials"}

// Client implements an OddsSource backed by The Odds API v4. Every response,
// success or failure, carries x-requests-remaining / x-requests-used headers
// which callers mirror into the rate-limit state.
type Client struct {
	apiKey     string
	baseURL    string
	regions    string
	markets    string
	timeout    time.Duration
	httpClient *pkghttp.Client
}

var _ drepo.OddsSource = (*Client)(nil)

type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point this at a local server).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout bounds each request so a stalled provider cannot hold a
// scheduled tier open.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMarkets sets the comma-separated market list.
func WithMarkets(regions, markets string) Option {
	return func(c *Client) {
		if regions != "" {
			c.regions = regions
		}
		if markets != "" {
			c.markets = markets
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		regions: "us",
		markets: "outrights,futures",
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = pkghttp.NewClient(pkghttp.WithTimeout(c.timeout))
	return c
}

func (c *Client) Kind() models.SourceKind { return models.SourceTheOddsAPI }

// FetchDraftOdds discovers the active draft sport key, then pulls its odds
// in decimal format. Quota is reported from whichever response was seen last.
func (c *Client) FetchDraftOdds(ctx context.Context) (json.RawMessage, models.Quota, bool, error) {
	sportsBody, quota, quotaOK, err := c.get(ctx, "/sports", nil)
	if err != nil {
		return nil, quota, quotaOK, fmt.Errorf("list sports: %w", err)
	}

	var sports []struct {
		Key    string `json:"key"`
		Active bool   `json:"active"`
	}
	if err := json.Unmarshal(sportsBody, &sports); err != nil {
		return nil, quota, quotaOK, fmt.Errorf("parse sports response: %w", err)
	}

	sportKey := ""
	for _, s := range sports {
		for _, hint := range draftKeyHints {
			if strings.Contains(strings.ToLower(s.Key), hint) {
				sportKey = s.Key
				break
			}
		}
		if sportKey != "" {
			break
		}
	}
	if sportKey == "" {
		return nil, quota, quotaOK, fmt.Errorf("no draft market listed by provider")
	}

	params := map[string][]string{
		"regions":    {c.regions},
		"markets":    {c.markets},
		"oddsFormat": {"decimal"},
		"dateFormat": {"unix"},
	}

	body, quota2, quota2OK, err := c.get(ctx, "/sports/"+sportKey+"/odds", params)
	if quota2OK {
		quota, quotaOK = quota2, true
	}
	if err != nil {
		return nil, quota, quotaOK, fmt.Errorf("fetch odds for %s: %w", sportKey, err)
	}
	return body, quota, quotaOK, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string) (json.RawMessage, models.Quota, bool, error) {
	if params == nil {
		params = map[string][]string{}
	}
	params["apiKey"] = []string{c.apiKey}

	resp, err := c.httpClient.SendRequest(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + path,
		Headers:     map[string]string{"User-Agent": userAgent},
		QueryParams: params,
	})
	if err != nil {
		return nil, models.Quota{}, false, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	quota, quotaOK := quotaFromHeaders(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, quota, quotaOK, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, quota, quotaOK, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, quota, quotaOK, nil
}

func quotaFromHeaders(h http.Header) (models.Quota, bool) {
	var q models.Quota
	ok := false
	if v := h.Get("x-requests-remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Remaining = n
			ok = true
		}
	}
	if v := h.Get("x-requests-used"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Used = n
			ok = true
		}
	}
	return q, ok
}

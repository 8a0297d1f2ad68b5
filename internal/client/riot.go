package client

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

	"github.com/Clemtourte/tft-app-project/internal/metrics"
	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/rs/zerolog/log"
)

// Sentinel errors for upstream status codes
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("API key rejected")
	ErrRateLimited  = errors.New("rate limited")
)

// Client is the Riot API and Data Dragon client.
// Every call is a single GET; failures are returned, never retried.
type Client struct {
	regionURL  string
	ddragonURL string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Riot API client
func NewClient(regionURL, ddragonURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		regionURL:  strings.TrimRight(regionURL, "/"),
		ddragonURL: strings.TrimRight(ddragonURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request and returns the body of a 200 response.
// endpoint is a short label used for metrics and logs.
func (c *Client) get(ctx context.Context, endpoint, rawURL string, params url.Values, withKey bool) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	if withKey {
		q.Set("api_key", c.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	log.Debug().
		Str("endpoint", endpoint).
		Str("path", req.URL.Path).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "network_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, nil

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (retry after %qs)", ErrRateLimited, resp.Header.Get("Retry-After"))

	default:
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// accountResponse is the body of /riot/account/v1/accounts/by-riot-id
type accountResponse struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// FetchPUUID resolves a Riot ID (gameName#tagLine) to a PUUID
func (c *Client) FetchPUUID(ctx context.Context, username, tag string) (string, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionURL, url.PathEscape(username), url.PathEscape(tag))

	body, err := c.get(ctx, "account", u, nil, true)
	if err != nil {
		return "", fmt.Errorf("failed to fetch account %s#%s: %w", username, tag, err)
	}

	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return "", fmt.Errorf("failed to unmarshal account: %w", err)
	}
	if account.PUUID == "" {
		return "", fmt.Errorf("account %s#%s has no puuid", username, tag)
	}

	return account.PUUID, nil
}

// FetchMatchIDs lists match ids for a player, newest first
func (c *Client) FetchMatchIDs(ctx context.Context, puuid string, start, count int) ([]string, error) {
	u := fmt.Sprintf("%s/tft/match/v1/matches/by-puuid/%s/ids", c.regionURL, url.PathEscape(puuid))
	params := url.Values{
		"start": {strconv.Itoa(start)},
		"count": {strconv.Itoa(count)},
	}

	body, err := c.get(ctx, "match_ids", u, params, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match ids: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match ids: %w", err)
	}

	return ids, nil
}

// FetchMatch fetches the full payload of one match
func (c *Client) FetchMatch(ctx context.Context, matchID string) (*models.MatchPayload, error) {
	u := fmt.Sprintf("%s/tft/match/v1/matches/%s", c.regionURL, url.PathEscape(matchID))

	body, err := c.get(ctx, "match", u, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}

	payload, err := models.ParseMatchPayload(body)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}

	return payload, nil
}

// FetchMatches fetches matches one after another. The first failure aborts
// and nothing fetched so far is returned.
func (c *Client) FetchMatches(ctx context.Context, matchIDs []string) ([]*models.MatchPayload, error) {
	payloads := make([]*models.MatchPayload, 0, len(matchIDs))
	for _, id := range matchIDs {
		payload, err := c.FetchMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// Package hotstreak is the upstream client: the graphql search query ships
// each participant's markets64 blob, the system query ships the category
// catalog the decoded records are joined against.
package hotstreak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Vodeneev/vodeneevprops/internal/pkg/config"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

const (
	defaultBaseURL   = "https://api3.hotstreak.gg/graphql"
	defaultAppURL    = "https://hs3.hotstreak.gg"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"
)

const searchQuery = `query search($query: String, $page: Int, $filters: SearchFilterInput) {
  search(query: $query, page: $page, filters: $filters) {
    results {
      markets64
      participant {
        player {
          firstName
          fullName
        }
      }
    }
  }
}`

const systemQuery = `query system {
  system {
    sports {
      id
      name
      categories {
        id
        name
        groupName
      }
    }
  }
}`

type Client struct {
	baseURL   string
	appURL    string
	sport     string
	userAgent string
	headers   map[string]string
	token     string
	client    *http.Client
}

func NewClient(cfg *config.HotStreakConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	appURL := cfg.AppURL
	if appURL == "" {
		appURL = defaultAppURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		baseURL:   baseURL,
		appURL:    appURL,
		sport:     cfg.Sport,
		userAgent: userAgent,
		headers:   cfg.Headers,
		token:     cfg.PrivyToken,
		client:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the privy auth token, e.g. after a browser refresh.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SearchMarkets fetches all participants with active markets for the
// configured sport, each carrying its markets64 blob. Results without a
// blob are dropped here; there is nothing to decode for them.
func (c *Client) SearchMarkets(ctx context.Context) ([]models.PlayerMarkets, error) {
	filters := map[string]any{"activeMarketsOnly": true}
	if c.sport != "" {
		filters["sport"] = c.sport
	}
	body, err := c.post(ctx, graphqlRequest{
		Query:         searchQuery,
		Variables:     map[string]any{"filters": filters},
		OperationName: "search",
	})
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	return ParseSearchResponse(body)
}

// FetchCategories fetches the category catalog for every sport from the
// system endpoint.
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	body, err := c.post(ctx, graphqlRequest{
		Query:         systemQuery,
		Variables:     map[string]any{},
		OperationName: "system",
	})
	if err != nil {
		return nil, fmt.Errorf("system request: %w", err)
	}
	return ParseSystemResponse(body)
}

func (c *Client) post(ctx context.Context, payload graphqlRequest) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Browser-like headers: the endpoint rejects requests that do not look
	// like the web app.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/graphql-response+json, application/json")
	req.Header.Set("Origin", c.appURL)
	req.Header.Set("Referer", c.appURL+"/")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-HS3-Version", "2")
	req.Header.Set("X-Requested-With", "web")
	if c.token != "" {
		req.Header.Set("Privy-Id-Token", c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Debug("hotstreak: non-200 response", "status", resp.StatusCode, "operation", payload.OperationName, "body_len", len(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return body, nil
}

// ParseSearchResponse extracts participants and their markets64 blobs from
// a raw search response body.
func ParseSearchResponse(body []byte) ([]models.PlayerMarkets, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("search query error: %s", resp.Errors[0].Message)
	}

	players := make([]models.PlayerMarkets, 0, len(resp.Data.Search.Results))
	for _, r := range resp.Data.Search.Results {
		if r.Markets64 == "" {
			continue
		}
		fullName := r.Participant.Player.FullName
		if fullName == "" {
			fullName = r.Participant.Player.FirstName
		}
		if fullName == "" {
			fullName = "Unknown"
		}
		players = append(players, models.PlayerMarkets{
			FirstName: r.Participant.Player.FirstName,
			FullName:  fullName,
			Markets64: r.Markets64,
		})
	}
	return players, nil
}

// ParseSystemResponse flattens the per-sport category catalogs from a raw
// system response body.
func ParseSystemResponse(body []byte) ([]models.Category, error) {
	var resp systemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse system response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("system query error: %s", resp.Errors[0].Message)
	}

	var categories []models.Category
	for _, sport := range resp.Data.System.Sports {
		for _, cat := range sport.Categories {
			if cat.ID == "" {
				continue
			}
			categories = append(categories, models.Category{
				ID:        cat.ID,
				Name:      cat.Name,
				GroupName: cat.GroupName,
				Sport:     sport.Name,
			})
		}
	}
	return categories, nil
}

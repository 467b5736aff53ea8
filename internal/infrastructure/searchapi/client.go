package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Phantasm0009/search-party/internal/domain"
	"github.com/Phantasm0009/search-party/internal/infrastructure/configs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResultsPerQuery = 10

var (
	// ErrNotConfigured means the provider credentials are missing; the
	// endpoint reports 501 rather than failing a room.
	ErrNotConfigured = errors.New("search provider not configured")

	// ErrProvider wraps upstream failures.
	ErrProvider = errors.New("search provider error")
)

// Client calls the Google Custom Search REST API. It is an external
// collaborator of the room coordinator: its results only enter room state
// through a subsequent new_search event.
type Client struct {
	cfg  configs.SearchConfig
	http *http.Client
}

func NewClient(cfg configs.SearchConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.EngineID != ""
}

// Response mirrors what the original proxy returned to its UI.
type Response struct {
	Query        string          `json:"query"`
	Results      []domain.Result `json:"results"`
	TotalResults string          `json:"totalResults"`
	SearchTime   string          `json:"searchTime"`
}

type googleResponse struct {
	Items []struct {
		Title        string `json:"title"`
		Link         string `json:"link"`
		Snippet      string `json:"snippet"`
		DisplayLink  string `json:"displayLink"`
		FormattedURL string `json:"formattedUrl"`
		PageMap      struct {
			CSEImage []struct {
				Src string `json:"src"`
			} `json:"cse_image"`
		} `json:"pagemap"`
	} `json:"items"`
	SearchInformation struct {
		TotalResults string  `json:"totalResults"`
		SearchTime   float64 `json:"searchTime"`
	} `json:"searchInformation"`
}

// Search queries the provider. start is 1-based; num is clamped to 10.
func (c *Client) Search(ctx context.Context, query string, start, num int) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	if start < 1 {
		start = 1
	}
	if num < 1 || num > maxResultsPerQuery {
		num = maxResultsPerQuery
	}

	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("cx", c.cfg.EngineID)
	params.Set("q", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("num", strconv.Itoa(num))
	params.Set("safe", "active")
	params.Set("lr", "lang_en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream status %d", ErrProvider, resp.StatusCode)
	}

	var decoded googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	now := time.Now().UnixMilli()
	results := make([]domain.Result, 0, len(decoded.Items))
	for i, item := range decoded.Items {
		image := ""
		if len(item.PageMap.CSEImage) > 0 {
			image = item.PageMap.CSEImage[0].Src
		}

		results = append(results, domain.Result{
			ID:           fmt.Sprintf("%d_%d", now, i),
			Title:        item.Title,
			URL:          item.Link,
			Snippet:      item.Snippet,
			DisplayLink:  item.DisplayLink,
			FormattedURL: item.FormattedURL,
			Image:        image,
		})
	}

	totalResults := decoded.SearchInformation.TotalResults
	if totalResults == "" {
		totalResults = "0"
	}

	return &Response{
		Query:        query,
		Results:      results,
		TotalResults: totalResults,
		SearchTime:   strconv.FormatFloat(decoded.SearchInformation.SearchTime, 'f', -1, 64),
	}, nil
}

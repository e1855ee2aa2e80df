package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/saasgenius/saasgenius/pkg/logger"
)

// Client talks to a SearXNG-compatible search API and extracts readable
// page text for market research. It is optional: a nil client disables
// enrichment without disabling analysis.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewClient(baseURL string, timeoutSeconds int) *Client {
	if baseURL == "" {
		return nil
	}
	t := time.Duration(timeoutSeconds) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		timeout: t,
		client:  &http.Client{Timeout: t},
	}
}

type searchResponse struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Result is a single search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search runs a query against the search API.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/search"

	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("categories", "general")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search api error (status %d): %s", res.StatusCode, string(body))
	}

	var resp searchResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := resp.Results
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// MarketContext gathers search snippets (and page text where the snippet is
// thin) for a market query and joins them into prompt context. Fetch
// failures degrade to whatever the snippet carried.
func (c *Client) MarketContext(ctx context.Context, query string, maxSources int) (string, error) {
	results, err := c.Search(ctx, query+" market size competitors trends", maxSources*2)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	used := 0
	for _, r := range results {
		content := r.Content
		if len(content) < 200 {
			if fetched, err := fetchReadable(r.URL, c.timeout); err == nil && len(fetched) > len(content) {
				content = fetched
			} else if err != nil {
				logger.Log.Debugf("research: fetch %s: %v", r.URL, err)
			}
		}
		content = strings.TrimSpace(content)
		if len(content) < 80 {
			continue
		}
		if len(content) > 1500 {
			content = content[:1500]
		}
		fmt.Fprintf(&sb, "Source: %s\n%s\n\n", r.Title, content)
		used++
		if used >= maxSources {
			break
		}
	}
	if used == 0 {
		return "", fmt.Errorf("no usable market sources for %q", query)
	}
	return sb.String(), nil
}

func fetchReadable(pageURL string, timeout time.Duration) (string, error) {
	article, err := readability.FromURL(pageURL, timeout)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

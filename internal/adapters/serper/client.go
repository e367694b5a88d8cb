// Package serper queries Google search results through serper.dev.
package serper

import (
	"context"
	"fmt"

	"dealfinder/internal/adapters/apiclient"
	"dealfinder/internal/domain"
)

const DefaultBaseURL = "https://google.serper.dev"

type Client struct {
	api *apiclient.Client
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("serper: API key is required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{api: apiclient.New("serper", base, rps, apiclient.WithHeader("X-API-KEY", key))}, nil
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

type result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Price   string `json:"price"`
	Source  string `json:"source"`
}

type searchResponse struct {
	Organic  []result `json:"organic"`
	Shopping []result `json:"shopping"`
}

const (
	maxOrganic  = 8
	maxShopping = 5
)

func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	var resp searchResponse
	req := searchRequest{Q: query, Num: 10, GL: "us", HL: "en"}
	if err := c.api.PostJSON(ctx, "/search", req, &resp); err != nil {
		return nil, fmt.Errorf("serper search: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Organic)+len(resp.Shopping))
	for i, r := range resp.Organic {
		if i == maxOrganic {
			break
		}
		hits = append(hits, toHit(r, "organic"))
	}
	for i, r := range resp.Shopping {
		if i == maxShopping {
			break
		}
		hits = append(hits, toHit(r, "shopping"))
	}
	return hits, nil
}

func toHit(r result, kind string) domain.SearchHit {
	return domain.SearchHit{
		Title:   r.Title,
		Link:    r.Link,
		Snippet: r.Snippet,
		Price:   r.Price,
		Source:  r.Source,
		Kind:    kind,
	}
}

// Ping runs the smallest billable query to confirm the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.PostJSON(ctx, "/search", searchRequest{Q: "test", Num: 1}, nil); err != nil {
		return fmt.Errorf("serper ping: %w", err)
	}
	return nil
}

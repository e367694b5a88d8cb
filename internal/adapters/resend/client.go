// Package resend delivers email through the Resend API.
package resend

import (
	"context"
	"fmt"

	"dealfinder/internal/adapters/apiclient"
	"dealfinder/internal/domain"
)

const (
	DefaultBaseURL = "https://api.resend.com"
	DefaultFrom    = "onboarding@resend.dev"
)

type Client struct {
	api  *apiclient.Client
	from string
}

func New(base, key, from string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("resend: API key is required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	if from == "" {
		from = DefaultFrom
	}
	return &Client{api: apiclient.New("resend", base, 2, apiclient.WithBearer(key)), from: from}, nil
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send returns the provider's message id.
func (c *Client) Send(ctx context.Context, e domain.Email) (string, error) {
	from := e.From
	if from == "" {
		from = c.from
	}
	var out sendResponse
	req := sendRequest{From: from, To: e.To, Subject: e.Subject, HTML: e.HTML, Text: e.Text}
	if err := c.api.PostJSON(ctx, "/emails", req, &out); err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}
	return out.ID, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.GetJSON(ctx, "/domains", nil); err != nil {
		return fmt.Errorf("resend ping: %w", err)
	}
	return nil
}

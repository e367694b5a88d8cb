// Package omnidim places outbound calls through the OmniDimension voice-agent
// platform.
package omnidim

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"dealfinder/internal/adapters/apiclient"
	"dealfinder/internal/domain"
)

const DefaultBaseURL = "https://api.omnidimension.ai"

// Client places calls through one fixed agent when agentID is set. Without
// one it provisions an agent per product on first use and reuses it.
type Client struct {
	api     *apiclient.Client
	agentID string
	webhook string

	mu     sync.Mutex
	agents map[string]string // product -> agent id
}

type Option func(*Client)

// WithWebhookURL is where provisioned agents post call events.
func WithWebhookURL(u string) Option {
	return func(c *Client) { c.webhook = u }
}

func New(base, key, agentID string, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("omnidim: API key is required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		api:     apiclient.New("omnidimension", base, 2, apiclient.WithBearer(key), apiclient.WithTimeout(10*time.Second)),
		agentID: agentID,
		agents:  make(map[string]string),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type agentConfig struct {
	Name         string        `json:"name"`
	Prompt       string        `json:"prompt"`
	Voice        voiceSettings `json:"voice_settings"`
	Conversation convSettings  `json:"conversation_config"`
	WebhookURL   string        `json:"webhook_url,omitempty"`
	Metadata     agentMetadata `json:"metadata"`
}

type voiceSettings struct {
	Provider  string  `json:"provider"`
	VoiceID   string  `json:"voice_id"`
	Stability float64 `json:"stability"`
	Clarity   float64 `json:"similarity_boost"`
}

type convSettings struct {
	MaxDuration    int     `json:"max_duration"`
	SilenceTimeout int     `json:"silence_timeout"`
	Interruption   float64 `json:"interruption_threshold"`
}

type agentMetadata struct {
	Product   string   `json:"product"`
	SearchID  string   `json:"search_id"`
	Resellers []string `json:"resellers,omitempty"`
}

type agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func agentPrompt(product string) string {
	return strings.Join([]string{
		"You are Alex, a polite and professional shopping assistant from DealFinder AI.",
		fmt.Sprintf("You are calling a retailer to ask about the %s.", product),
		"Ask whether it is in stock, the current price, delivery options and the condition of the item.",
		"If a price is given, ask once whether there is any flexibility for an immediate purchase.",
		"Always repeat the final price clearly in dollars before ending the call, and thank them for their time.",
	}, " ")
}

// CreateAgent provisions a price-inquiry agent for product.
func (c *Client) CreateAgent(ctx context.Context, product string, resellers []string) (domain.Agent, error) {
	cfg := agentConfig{
		Name:   "Deal Finder for " + product,
		Prompt: agentPrompt(product),
		Voice:  voiceSettings{Provider: "elevenlabs", VoiceID: "21m00Tcm4TlvDq8ikWAM", Stability: 0.5, Clarity: 0.75},
		Conversation: convSettings{
			MaxDuration:    300,
			SilenceTimeout: 10,
			Interruption:   0.7,
		},
		WebhookURL: c.webhook,
		Metadata: agentMetadata{
			Product:   product,
			SearchID:  fmt.Sprintf("search_%d", time.Now().UnixMilli()),
			Resellers: resellers,
		},
	}
	var out agent
	if err := c.api.PostJSON(ctx, "/v1/agents", cfg, &out); err != nil {
		return domain.Agent{}, fmt.Errorf("omnidim create agent: %w", err)
	}
	if out.ID == "" {
		return domain.Agent{}, fmt.Errorf("omnidim create agent: empty agent id")
	}
	return domain.Agent{ID: out.ID, Name: out.Name, Product: product}, nil
}

// agentFor returns the configured agent, or the one provisioned for product.
func (c *Client) agentFor(ctx context.Context, product, seller string) (string, error) {
	if c.agentID != "" {
		return c.agentID, nil
	}
	key := strings.ToLower(strings.TrimSpace(product))
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.agents[key]; ok {
		return id, nil
	}
	a, err := c.CreateAgent(ctx, product, []string{seller})
	if err != nil {
		return "", err
	}
	c.agents[key] = a.ID
	return a.ID, nil
}

// Ping lists agents, which needs nothing but a valid key.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.GetJSON(ctx, "/v1/agents", nil); err != nil {
		return fmt.Errorf("omnidim ping: %w", err)
	}
	return nil
}

type callConfig struct {
	AgentID     string       `json:"agent_id"`
	PhoneNumber string       `json:"phone_number"`
	Metadata    callMetadata `json:"metadata"`
	Settings    callSettings `json:"call_settings"`
}

type callMetadata struct {
	Reseller  string `json:"reseller"`
	Product   string `json:"product"`
	Purpose   string `json:"call_purpose"`
	Script    string `json:"instructions,omitempty"`
	Timestamp string `json:"timestamp"`
}

type callSettings struct {
	RecordCall       bool `json:"record_call"`
	Transcribe       bool `json:"transcribe"`
	AnalyzeSentiment bool `json:"analyze_sentiment"`
}

type call struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Duration   int            `json:"duration"`
	Transcript string         `json:"transcript"`
	Metadata   map[string]any `json:"metadata"`
}

func (c *Client) PlaceCall(ctx context.Context, req domain.CallRequest) (domain.CallTicket, error) {
	agentID, err := c.agentFor(ctx, req.Product, req.Seller.Name)
	if err != nil {
		return domain.CallTicket{}, err
	}
	cfg := callConfig{
		AgentID:     agentID,
		PhoneNumber: req.Seller.Phone,
		Metadata: callMetadata{
			Reseller:  req.Seller.Name,
			Product:   req.Product,
			Purpose:   "price_inquiry",
			Script:    req.Script,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Settings: callSettings{RecordCall: true, Transcribe: true, AnalyzeSentiment: true},
	}
	var out call
	if err := c.api.PostJSON(ctx, "/v1/calls", cfg, &out); err != nil {
		return domain.CallTicket{}, fmt.Errorf("omnidim place call: %w", err)
	}
	if out.ID == "" {
		return domain.CallTicket{}, fmt.Errorf("omnidim place call: empty call id")
	}
	return domain.CallTicket{ID: out.ID, Status: out.Status, Provider: "omnidimension"}, nil
}

// GetCall fetches the provider's view of a call.
func (c *Client) GetCall(ctx context.Context, id string) (domain.CallStatus, error) {
	var out call
	if err := c.api.GetJSON(ctx, "/v1/calls/"+url.PathEscape(id), &out); err != nil {
		return domain.CallStatus{}, fmt.Errorf("omnidim get call %s: %w", id, err)
	}
	st := domain.CallStatus{
		CallID:     out.ID,
		Status:     out.Status,
		Transcript: out.Transcript,
		UpdatedAt:  time.Now().UTC(),
	}
	if s, ok := out.Metadata["reseller"].(string); ok {
		st.Seller = s
	}
	if p, ok := out.Metadata["product"].(string); ok {
		st.Product = p
	}
	return st, nil
}

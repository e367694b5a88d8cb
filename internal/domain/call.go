package domain

import "time"

type CallRequest struct {
	Product string
	Seller  Offer
	Script  string
}

type CallTicket struct {
	ID       string `json:"callId"`
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

type CallResult struct {
	CallID      string     `json:"callId"`
	Seller      string     `json:"seller"`
	Phone       string     `json:"phone"`
	Mode        string     `json:"mode"` // real|simulation
	Status      string     `json:"status"`
	Duration    int        `json:"callDuration"` // seconds
	Transcript  []string   `json:"conversation,omitempty"`
	Negotiation Negotiated `json:"negotiationResult"`
	Deal        Deal       `json:"deal"`
	StartedAt   time.Time  `json:"callStartTime"`
	EndedAt     time.Time  `json:"callEndTime"`
}

type Negotiated struct {
	OriginalPrice   int     `json:"originalPrice"`
	NegotiatedPrice int     `json:"negotiatedPrice"`
	Savings         int     `json:"savings"`
	SavingsPercent  int     `json:"savingsPercent"`
	Power           float64 `json:"negotiationPower"`
	Successful      bool    `json:"negotiationSuccessful"`
}

const (
	EventCallStarted      = "call_started"
	EventTranscriptUpdate = "transcript_update"
	EventCallCompleted    = "call_completed"
	EventCallFailed       = "call_failed"
)

// CallEvent is the webhook payload shape used by the voice-agent platform.
type CallEvent struct {
	Type   string         `json:"event_type" validate:"required"`
	CallID string         `json:"call_id" validate:"required"`
	Agent  string         `json:"agent_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	Seq    int            `json:"-"`
	At     time.Time      `json:"-"`
}

type CallStatus struct {
	CallID     string      `json:"callId"`
	Status     string      `json:"status"` // initiated|in_progress|completed|failed
	Seller     string      `json:"seller,omitempty"`
	Product    string      `json:"product,omitempty"`
	Transcript string      `json:"transcript,omitempty"`
	Price      *int        `json:"price,omitempty"`
	Error      string      `json:"error,omitempty"`
	Events     []CallEvent `json:"-"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Agent is a voice agent provisioned on the calling platform for one product.
type Agent struct {
	ID      string `json:"agentId"`
	Name    string `json:"name"`
	Product string `json:"product"`
	Demo    bool   `json:"demoMode"`
}

package domain

import "context"

type SearchClient interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

type VoiceClient interface {
	PlaceCall(ctx context.Context, req CallRequest) (CallTicket, error)
}

type Mailer interface {
	Send(ctx context.Context, e Email) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type RecordRepository interface {
	Insert(ctx context.Context, r Record) error
	List(ctx context.Context, typ string, limit int) ([]Record, error)
}

type AgentProvisioner interface {
	CreateAgent(ctx context.Context, product string, resellers []string) (Agent, error)
}

// Pinger is an outside dependency that can report whether it is reachable
// with the configured credentials.
type Pinger interface {
	Ping(ctx context.Context) error
}

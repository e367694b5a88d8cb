package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dealfinder/internal/adapters/observability"
	"dealfinder/internal/domain"
)

type AgentService struct {
	provisioner domain.AgentProvisioner // nil means demo agents
}

func NewAgentService(p domain.AgentProvisioner) *AgentService {
	return &AgentService{provisioner: p}
}

// Create provisions a voice agent for product. Without a provisioner, or when
// provisioning fails, it returns a demo agent so the flow can continue.
func (s *AgentService) Create(ctx context.Context, product string, resellers []string) (domain.Agent, error) {
	product = strings.TrimSpace(product)
	if s.provisioner == nil {
		observability.ObserveFallback("agent", "unconfigured", nil)
		return demoAgent(product), nil
	}
	a, err := s.provisioner.CreateAgent(ctx, product, resellers)
	if err != nil {
		observability.ObserveFallback("agent", "error", err)
		log.Warn().Err(err).Str("product", product).Msg("agent provisioning failed, using demo agent")
		return demoAgent(product), nil
	}
	log.Info().Str("agent_id", a.ID).Str("product", product).Msg("agent provisioned")
	return a, nil
}

func demoAgent(product string) domain.Agent {
	return domain.Agent{
		ID:      "demo_agent_" + xid.New().String(),
		Name:    "Deal Finder for " + product,
		Product: product,
		Demo:    true,
	}
}

// CheckResult is the outcome of pinging one outside service.
type CheckResult struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

// CheckIntegrations pings every configured service concurrently, each bounded
// by timeout. Unconfigured services are simply absent from pingers.
func CheckIntegrations(ctx context.Context, pingers map[string]domain.Pinger, timeout time.Duration) map[string]CheckResult {
	out := make(map[string]CheckResult, len(pingers))
	var mu sync.Mutex
	var g errgroup.Group
	for name, p := range pingers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			start := time.Now()
			err := p.Ping(cctx)
			res := CheckResult{OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Error = err.Error()
				log.Warn().Err(err).Str("service", name).Msg("integration check failed")
			}
			mu.Lock()
			out[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

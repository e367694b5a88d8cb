package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dealfinder/internal/adapters/observability"
	"dealfinder/internal/domain"
	"dealfinder/internal/pricing"
)

const (
	ModeReal       = "real"
	ModeSimulation = "simulation"
)

// statusFetcher is implemented by voice clients that can be polled.
type statusFetcher interface {
	GetCall(ctx context.Context, id string) (domain.CallStatus, error)
}

type CallService struct {
	voice   domain.VoiceClient // nil means every call is simulated
	est     *pricing.Estimator
	events  *EventLog
	logs    *LogService // optional
	workers int

	now      func() time.Time
	duration func() int
}

func NewCallService(vc domain.VoiceClient, est *pricing.Estimator, events *EventLog, logs *LogService, workers int) *CallService {
	if est == nil {
		est = pricing.Default
	}
	if events == nil {
		events = NewEventLog(0)
	}
	if workers <= 0 {
		workers = 4
	}
	return &CallService{
		voice:    vc,
		est:      est,
		events:   events,
		logs:     logs,
		workers:  workers,
		now:      time.Now,
		duration: func() int { return 120 + rand.IntN(180) },
	}
}

// Negotiate calls every seller concurrently and returns one result per offer,
// in the order the offers were given.
func (s *CallService) Negotiate(ctx context.Context, product string, offers []domain.Offer) ([]domain.CallResult, error) {
	results := make([]domain.CallResult, len(offers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, o := range offers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.call(gctx, product, o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *CallService) call(ctx context.Context, product string, o domain.Offer) domain.CallResult {
	if s.voice == nil {
		observability.ObserveFallback("voice", "unconfigured", nil)
		return s.simulate(product, o)
	}

	req := domain.CallRequest{Product: product, Seller: o, Script: Script(product, o)}
	t, err := s.voice.PlaceCall(ctx, req)
	if err != nil {
		observability.ObserveFallback("voice", "error", err)
		return s.simulate(product, o)
	}

	now := s.now().UTC()
	s.events.Apply(domain.CallEvent{
		Type:   domain.EventCallStarted,
		CallID: t.ID,
		Data:   map[string]any{"seller": o.Name, "product": product},
		At:     now,
	})
	status := t.Status
	if status == "" {
		status = StatusInitiated
	}
	log.Info().Str("call_id", t.ID).Str("provider", t.Provider).Str("seller", o.Name).Msg("call placed")
	return domain.CallResult{
		CallID: t.ID,
		Seller: o.Name,
		Phone:  o.Phone,
		Mode:   ModeReal,
		Status: status,
		Negotiation: domain.Negotiated{
			OriginalPrice:   o.Price,
			NegotiatedPrice: o.Price,
			Power:           s.est.NegotiationPower(o.Name),
		},
		Deal:      dealFor(o, o.Price, 0),
		StartedAt: now,
	}
}

// simulate stands in for a real call. The events a voice platform would
// deliver are applied to the log in order before the result is returned.
func (s *CallService) simulate(product string, o domain.Offer) domain.CallResult {
	id := "sim_" + xid.New().String()
	n := s.est.Negotiate(o.Price, o.Name)
	lines := Transcript(product, o.Name, n)
	start := s.now().UTC()
	dur := s.duration()
	end := start.Add(time.Duration(dur) * time.Second)

	s.events.Apply(domain.CallEvent{
		Type:   domain.EventCallStarted,
		CallID: id,
		Data:   map[string]any{"seller": o.Name, "product": product},
		At:     start,
	})
	for _, line := range lines {
		s.events.Apply(domain.CallEvent{
			Type:   domain.EventTranscriptUpdate,
			CallID: id,
			Data:   map[string]any{"transcript": line},
			At:     start,
		})
	}
	s.events.Apply(domain.CallEvent{Type: domain.EventCallCompleted, CallID: id, At: end})

	observability.ObserveNegotiation(ModeSimulation, n.SavingsPercent)
	return domain.CallResult{
		CallID:     id,
		Seller:     o.Name,
		Phone:      o.Phone,
		Mode:       ModeSimulation,
		Status:     StatusCompleted,
		Duration:   dur,
		Transcript: lines,
		Negotiation: domain.Negotiated{
			OriginalPrice:   n.OriginalPrice,
			NegotiatedPrice: n.NegotiatedPrice,
			Savings:         n.Savings,
			SavingsPercent:  n.SavingsPercent,
			Power:           n.Power,
			Successful:      n.Savings > 0,
		},
		Deal:      dealFor(o, n.NegotiatedPrice, n.SavingsPercent),
		StartedAt: start,
		EndedAt:   end,
	}
}

// HandleEvent applies a webhook event from the voice platform. Unknown event
// types are logged and dropped.
func (s *CallService) HandleEvent(ctx context.Context, ev domain.CallEvent) error {
	st, finished, ok := s.events.Apply(ev)
	if !ok {
		log.Warn().Str("event_type", ev.Type).Str("call_id", ev.CallID).Msg("ignoring voice event")
		return nil
	}
	log.Info().Str("event_type", ev.Type).Str("call_id", ev.CallID).Str("status", st.Status).Msg("voice event")

	if s.logs != nil && finished {
		if _, err := s.logs.Store(ctx, "call", st); err != nil {
			return fmt.Errorf("store call %s: %w", ev.CallID, err)
		}
	}
	return nil
}

func (s *CallService) Status(ctx context.Context, id string) (domain.CallStatus, error) {
	if st, ok := s.events.Get(id); ok {
		return st, nil
	}
	if f, ok := s.voice.(statusFetcher); ok && !strings.HasPrefix(id, "sim_") {
		st, err := f.GetCall(ctx, id)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.CallStatus{}, fmt.Errorf("fetch call %s: %w", id, err)
		}
	}
	return domain.CallStatus{}, domain.ErrNotFound
}

// Deals flattens call results into the deals worth reporting. Failed calls
// are skipped.
func (s *CallService) Deals(results []domain.CallResult) []domain.Deal {
	out := make([]domain.Deal, 0, len(results))
	for _, r := range results {
		if r.Status == StatusFailed {
			continue
		}
		out = append(out, r.Deal)
	}
	return out
}

// dealFor takes savingsPercent from the pricing negotiation so there is one
// rounding rule for every percentage shown.
func dealFor(o domain.Offer, final, savingsPercent int) domain.Deal {
	return domain.Deal{
		SellerName:     o.Name,
		Phone:          o.Phone,
		Website:        o.Website,
		OriginalPrice:  o.Price,
		FinalPrice:     final,
		Delivery:       o.Delivery,
		SavingsPercent: savingsPercent,
	}
}

// Script is the instruction given to the voice agent for one call.
func Script(product string, o domain.Offer) string {
	return fmt.Sprintf(
		"You are calling %s about the %s listed at $%d. Confirm availability and delivery time, "+
			"mention you are comparing several retailers, and ask for their best price. Be polite and brief.",
		o.Name, product, o.Price)
}

// Transcript is the canned conversation of a simulated call. Its last dollar
// amount is the negotiated price.
func Transcript(product, seller string, n pricing.Negotiation) []string {
	lines := []string{
		fmt.Sprintf("Agent: Hi, I'm calling about the %s listed on your website. Is it in stock?", product),
		fmt.Sprintf("%s: Yes, we have it available. The current price is $%d.", seller, n.OriginalPrice),
		"Agent: I'm comparing offers from a few retailers today. Is there any flexibility on that price?",
	}
	if n.Savings > 0 {
		lines = append(lines,
			fmt.Sprintf("%s: Let me check with my manager. We can do $%d if you order today.", seller, n.NegotiatedPrice),
			"Agent: That works for me. Thank you!")
	} else {
		lines = append(lines,
			fmt.Sprintf("%s: Sorry, $%d is already our best price.", seller, n.NegotiatedPrice),
			"Agent: Understood, thanks for checking.")
	}
	return lines
}

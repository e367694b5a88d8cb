package app_test

import (
	"context"
	"errors"
	"sync"

	"dealfinder/internal/domain"
)

// ---- fakes ----

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

type fakeSearch struct {
	hits  []domain.SearchHit
	err   error
	calls int
	query string
}

func (f *fakeSearch) Search(ctx context.Context, q string) ([]domain.SearchHit, error) {
	f.calls++
	f.query = q
	return f.hits, f.err
}

type fakeVoice struct {
	mu     sync.Mutex
	fail   map[string]bool // by seller name
	placed []domain.CallRequest
	status map[string]domain.CallStatus
}

func (f *fakeVoice) PlaceCall(ctx context.Context, req domain.CallRequest) (domain.CallTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[req.Seller.Name] {
		return domain.CallTicket{}, errors.New("line busy")
	}
	f.placed = append(f.placed, req)
	return domain.CallTicket{ID: "call_" + req.Seller.Name, Status: "initiated", Provider: "fake"}, nil
}

func (f *fakeVoice) GetCall(ctx context.Context, id string) (domain.CallStatus, error) {
	st, ok := f.status[id]
	if !ok {
		return domain.CallStatus{}, domain.ErrNotFound
	}
	return st, nil
}

type fakeMailer struct {
	err  error
	sent []domain.Email
}

func (m *fakeMailer) Send(ctx context.Context, e domain.Email) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, e)
	return "email_123", nil
}

type memRepo struct {
	mu   sync.Mutex
	recs []domain.Record
	err  error
}

func (r *memRepo) Insert(ctx context.Context, rec domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.recs = append(r.recs, rec)
	return nil
}

func (r *memRepo) List(ctx context.Context, typ string, limit int) ([]domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Record
	for i := len(r.recs) - 1; i >= 0; i-- {
		if typ == "" || r.recs[i].Type == typ {
			out = append(out, r.recs[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

package app

import (
	"maps"
	"strings"
	"sync"
	"time"

	"dealfinder/internal/catalog"
	"dealfinder/internal/domain"
)

const (
	StatusInitiated  = "initiated"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// EventLog keeps the ordered event history and derived status of every call.
// Events are numbered per call in the order they are applied. Once a call is
// completed or failed, later events are recorded but no longer change it.
type EventLog struct {
	mu    sync.Mutex
	calls map[string]*domain.CallStatus
	order []string
	max   int
	now   func() time.Time
}

// NewEventLog keeps at most max calls, dropping the oldest first.
func NewEventLog(max int) *EventLog {
	if max <= 0 {
		max = 10000
	}
	return &EventLog{calls: make(map[string]*domain.CallStatus), max: max, now: time.Now}
}

func knownEvent(t string) bool {
	switch t {
	case domain.EventCallStarted, domain.EventTranscriptUpdate, domain.EventCallCompleted, domain.EventCallFailed:
		return true
	}
	return false
}

// Apply records ev and returns the call's status after it. finished is true
// only for the event that moved the call into completed or failed; replays
// and late events report false. ok is false for event types the log does not
// understand.
func (l *EventLog) Apply(ev domain.CallEvent) (st domain.CallStatus, finished, ok bool) {
	if !knownEvent(ev.Type) || ev.CallID == "" {
		return domain.CallStatus{}, false, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur, exists := l.calls[ev.CallID]
	if !exists {
		cur = &domain.CallStatus{CallID: ev.CallID, Status: StatusInitiated}
		l.calls[ev.CallID] = cur
		l.order = append(l.order, ev.CallID)
		l.evict()
	}

	if ev.At.IsZero() {
		ev.At = l.now().UTC()
	}
	ev.Seq = len(cur.Events) + 1
	ev.Data = maps.Clone(ev.Data)
	cur.Events = append(cur.Events, ev)
	cur.UpdatedAt = ev.At

	if !terminal(cur.Status) {
		apply(cur, ev)
		finished = terminal(cur.Status)
	}
	return snapshot(cur), finished, true
}

func terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

func apply(cur *domain.CallStatus, ev domain.CallEvent) {
	// the voice platform names the seller "reseller", top level or in metadata
	if v := first(ev.Data, "seller", "reseller"); v != "" {
		cur.Seller = v
	}
	if v := first(ev.Data, "product"); v != "" {
		cur.Product = v
	}

	switch ev.Type {
	case domain.EventCallStarted:
		cur.Status = StatusInProgress
	case domain.EventTranscriptUpdate:
		cur.Status = StatusInProgress
		if line := first(ev.Data, "transcript_chunk", "transcript"); line != "" {
			if cur.Transcript != "" {
				cur.Transcript += "\n"
			}
			cur.Transcript += line
		}
	case domain.EventCallCompleted:
		cur.Status = StatusCompleted
		if full := str(ev.Data, "transcript"); full != "" {
			cur.Transcript = full
		}
		if p, ok := catalog.FinalPrice(cur.Transcript); ok {
			cur.Price = &p
		}
	case domain.EventCallFailed:
		cur.Status = StatusFailed
		cur.Error = str(ev.Data, "error")
		if cur.Error == "" {
			cur.Error = "call failed"
		}
	}
}

func (l *EventLog) Get(id string) (domain.CallStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.calls[id]
	if !ok {
		return domain.CallStatus{}, false
	}
	return snapshot(cur), true
}

func (l *EventLog) evict() {
	for len(l.order) > l.max {
		delete(l.calls, l.order[0])
		l.order = l.order[1:]
	}
}

func snapshot(cur *domain.CallStatus) domain.CallStatus {
	out := *cur
	out.Events = append([]domain.CallEvent(nil), cur.Events...)
	if cur.Price != nil {
		p := *cur.Price
		out.Price = &p
	}
	return out
}

func str(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return strings.TrimSpace(v)
}

// first returns the first non-empty value among keys, looking at the top
// level of data before its "metadata" object.
func first(data map[string]any, keys ...string) string {
	meta, _ := data["metadata"].(map[string]any)
	for _, m := range []map[string]any{data, meta} {
		for _, k := range keys {
			if v := str(m, k); v != "" {
				return v
			}
		}
	}
	return ""
}

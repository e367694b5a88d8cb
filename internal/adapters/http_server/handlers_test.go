package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpserver "dealfinder/internal/adapters/http_server"
	"dealfinder/internal/adapters/memcache"
	"dealfinder/internal/app"
	"dealfinder/internal/domain"
	"dealfinder/internal/pricing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

type memRepo struct {
	mu   sync.Mutex
	recs []domain.Record
}

func (r *memRepo) Insert(ctx context.Context, rec domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

func (r *memRepo) List(ctx context.Context, typ string, limit int) ([]domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Record
	for i := len(r.recs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if typ == "" || r.recs[i].Type == typ {
			out = append(out, r.recs[i])
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memRepo) {
	t.Helper()
	est := pricing.New(pricing.WithRand(fixedRand(0.5)))
	repo := &memRepo{}
	logs := app.NewLogService(repo)
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Est:          est,
		Search:       app.NewSearchService(nil, memcache.New(time.Minute), time.Minute, est),
		Calls:        app.NewCallService(nil, est, app.NewEventLog(0), logs, 2),
		Reports:      app.NewReportService(nil, logs),
		Logs:         logs,
		Agents:       app.NewAgentService(nil),
		Integrations: httpserver.Integrations{Storage: "jsonfile", Cache: "memory"},
		Checks: map[string]domain.Pinger{
			"cache":  pingFunc(func(context.Context) error { return nil }),
			"serper": pingFunc(func(context.Context) error { return errors.New("serper ping: remote: forbidden") }),
		},
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, repo
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealthAndIntegrations(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("healthz: %v %v", resp, err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/v1/integrations")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out struct {
		DemoMode     bool                       `json:"demoMode"`
		Integrations httpserver.Integrations    `json:"integrations"`
		Checks       map[string]app.CheckResult `json:"checks"`
	}
	decode(t, resp, &out)
	if !out.DemoMode || out.Integrations.Storage != "jsonfile" {
		t.Fatalf("integrations = %+v", out)
	}
	if _, ok := out.Checks["cache"]; ok {
		t.Fatalf("checks run without ?check=true")
	}

	resp, err = http.Get(ts.URL + "/v1/integrations?check=true")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out.Checks = nil
	decode(t, resp, &out)
	if !out.Checks["cache"].OK || out.Checks["serper"].OK || out.Checks["serper"].Error == "" {
		t.Fatalf("checks = %+v", out.Checks)
	}
}

func TestCreateAgent_DemoFallback(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, "/v1/agents", `{"product":"ps5","resellers":["Amazon","Costco"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var a domain.Agent
	decode(t, resp, &a)
	if !a.Demo || !strings.HasPrefix(a.ID, "demo_agent_") || a.Name != "Deal Finder for ps5" {
		t.Fatalf("agent = %+v", a)
	}

	if resp := post(t, ts, "/v1/agents", `{"resellers":["Amazon"]}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing product: status = %d", resp.StatusCode)
	}
}

func TestEstimate(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, "/v1/estimate", `{"product":"iPhone 15 Pro","seller":"Amazon"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var q domain.PriceQuote
	decode(t, resp, &q)
	if q.BasePrice != 999 || q.QuotedPrice != 949 || q.NegotiatedPrice != 902 {
		t.Fatalf("quote = %+v", q)
	}

	resp = post(t, ts, "/v1/estimate", `{"seller":"Amazon"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing product status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q", ct)
	}

	resp = post(t, ts, "/v1/estimate", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", resp.StatusCode)
	}
}

func TestSearchSellers(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, "/v1/sellers/search", `{"product":"Air Jordan 4 Retro"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res domain.SearchResult
	decode(t, resp, &res)
	if !res.Demo || len(res.Offers) != 5 || res.Offers[0].Name != "StockX" {
		t.Fatalf("result = %+v", res)
	}

	resp = post(t, ts, "/v1/sellers/search", `{"product":"garden hose"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unknown product status = %d", resp.StatusCode)
	}
	var p struct {
		Title       string   `json:"title"`
		Suggestions []string `json:"suggestions"`
	}
	decode(t, resp, &p)
	if p.Title != "Product Not Available" || len(p.Suggestions) == 0 {
		t.Fatalf("problem = %+v", p)
	}
}

func TestNegotiateThenStatus(t *testing.T) {
	ts, repo := newTestServer(t)

	body := `{"product":"PS5","sellers":[{"name":"Costco","phone":"+1-800-774-2678","price":1000},{"name":"Walmart","price":500}]}`
	resp := post(t, ts, "/v1/calls", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Results []domain.CallResult `json:"results"`
		Deals   []domain.Deal       `json:"deals"`
		Best    domain.Deal         `json:"bestDeal"`
		Savings int                 `json:"totalSavings"`
		LogID   string              `json:"logId"`
	}
	decode(t, resp, &out)
	if len(out.Results) != 2 || out.Deals[0].FinalPrice != 900 || out.Deals[1].FinalPrice != 460 {
		t.Fatalf("deals = %+v", out.Deals)
	}
	if out.Best.SellerName != "Walmart" || out.Savings != 140 || !strings.HasPrefix(out.LogID, "deals_") {
		t.Fatalf("summary = %+v %d %s", out.Best, out.Savings, out.LogID)
	}
	if len(repo.recs) != 1 {
		t.Fatalf("records = %d", len(repo.recs))
	}

	st, err := http.Get(ts.URL + "/v1/calls/" + out.Results[0].CallID)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Body.Close()
	if st.StatusCode != http.StatusOK || st.Header.Get("ETag") == "" {
		t.Fatalf("call status = %d", st.StatusCode)
	}
	var cs domain.CallStatus
	decode(t, st, &cs)
	if cs.Status != app.StatusCompleted || cs.Price == nil || *cs.Price != 900 {
		t.Fatalf("call = %+v", cs)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/calls/"+out.Results[0].CallID, nil)
	req.Header.Set("If-None-Match", st.Header.Get("ETag"))
	again, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	again.Body.Close()
	if again.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional status = %d", again.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/v1/calls/sim_nope")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing call status = %d", missing.StatusCode)
	}
}

func TestNegotiate_RejectsEmptySellers(t *testing.T) {
	ts, _ := newTestServer(t)
	if resp := post(t, ts, "/v1/calls", `{"product":"PS5","sellers":[]}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp := post(t, ts, "/v1/calls", `{"product":"PS5","sellers":[{"price":10}]}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("nameless seller status = %d", resp.StatusCode)
	}
}

func TestVoiceWebhook(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, body := range []string{
		`{"event_type":"call_started","call_id":"abc","data":{"seller":"Target"}}`,
		`{"event_type":"call_completed","call_id":"abc","data":{"transcript":"Sure, $310 final."}}`,
		`{"event_type":"mystery","call_id":"abc"}`,
	} {
		if resp := post(t, ts, "/v1/webhooks/voice", body); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", body, resp.StatusCode)
		}
	}
	if resp := post(t, ts, "/v1/webhooks/voice", `{"call_id":"abc"}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing event type status = %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/v1/calls/abc")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var cs domain.CallStatus
	decode(t, resp, &cs)
	if cs.Status != app.StatusCompleted || cs.Seller != "Target" || cs.Price == nil || *cs.Price != 310 {
		t.Fatalf("call = %+v", cs)
	}
}

func TestEmailReport_StoredWithoutMailer(t *testing.T) {
	ts, repo := newTestServer(t)

	body := `{"email":"buyer@example.com","product":"PS5","deals":[{"sellerName":"Costco","originalPrice":1000,"finalPrice":900,"savingsPercent":10}]}`
	resp := post(t, ts, "/v1/reports/email", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rc domain.ReportReceipt
	decode(t, resp, &rc)
	if rc.Method != app.MethodStored || rc.Sent || len(repo.recs) != 1 {
		t.Fatalf("receipt = %+v", rc)
	}

	if resp := post(t, ts, "/v1/reports/email", `{"email":"nope","product":"PS5","deals":[{"sellerName":"A"}]}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d", resp.StatusCode)
	}
	if resp := post(t, ts, "/v1/reports/email", `{"email":"buyer@example.com","product":"PS5"}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("no deals status = %d", resp.StatusCode)
	}
}

func TestLogs(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, "/v1/logs", `{"type":"user_action","data":{"action":"search","product":"PS5"}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("store status = %d", resp.StatusCode)
	}
	if resp := post(t, ts, "/v1/logs", `{"type":"../../etc","data":{}}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad type status = %d", resp.StatusCode)
	}

	list, err := http.Get(ts.URL + "/v1/logs?type=user_action&limit=5")
	if err != nil {
		t.Fatal(err)
	}
	defer list.Body.Close()
	var out struct {
		Count   int             `json:"count"`
		Records []domain.Record `json:"records"`
	}
	decode(t, list, &out)
	if out.Count != 1 || out.Records[0].Type != "user_action" {
		t.Fatalf("list = %+v", out)
	}

	bad, err := http.Get(ts.URL + "/v1/logs?limit=0")
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", bad.StatusCode)
	}
}

package omnidim_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealfinder/internal/adapters/omnidim"
	"dealfinder/internal/domain"
)

func TestClient_PlaceAndGetCall(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer")
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/calls":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["agent_id"] != "agent-1" || body["phone_number"] != "+1-888-280-4331" {
				t.Errorf("unexpected body %v", body)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "call-9", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/calls/call-9":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "call-9", "status": "completed", "transcript": "price is $900",
				"metadata": map[string]any{"reseller": "Amazon", "product": "ps5"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	cl, err := omnidim.New(ts.URL, "key", "agent-1")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	tk, err := cl.PlaceCall(ctx, domain.CallRequest{
		Product: "ps5",
		Seller:  domain.Offer{Seller: domain.Seller{Name: "Amazon", Phone: "+1-888-280-4331"}},
	})
	if err != nil || tk.ID != "call-9" || tk.Provider != "omnidimension" {
		t.Fatalf("PlaceCall = %+v, %v", tk, err)
	}

	st, err := cl.GetCall(ctx, "call-9")
	if err != nil || st.Status != "completed" || st.Seller != "Amazon" || st.Product != "ps5" {
		t.Fatalf("GetCall = %+v, %v", st, err)
	}

	if _, err := cl.GetCall(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := omnidim.New("", "", "a"); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := omnidim.New("", "k", ""); err != nil {
		t.Fatalf("agent id is optional, got %v", err)
	}
}

func TestClient_ProvisionsAgentPerProduct(t *testing.T) {
	var created []map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/agents":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			created = append(created, body)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "agent-" + body["metadata"].(map[string]any)["product"].(string), "name": body["name"]})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/calls":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "call-for-" + body["agent_id"].(string), "status": "queued"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	cl, err := omnidim.New(ts.URL, "key", "", omnidim.WithWebhookURL("https://deals.example.com/v1/webhooks/voice"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, seller := range []string{"Amazon", "Walmart"} {
		tk, err := cl.PlaceCall(ctx, domain.CallRequest{
			Product: "ps5",
			Seller:  domain.Offer{Seller: domain.Seller{Name: seller, Phone: "+1-800-000-0000"}},
		})
		if err != nil || tk.ID != "call-for-agent-ps5" {
			t.Fatalf("PlaceCall(%s) = %+v, %v", seller, tk, err)
		}
	}
	if len(created) != 1 {
		t.Fatalf("expected one agent for one product, got %d", len(created))
	}
	a := created[0]
	if a["name"] != "Deal Finder for ps5" || a["webhook_url"] != "https://deals.example.com/v1/webhooks/voice" {
		t.Fatalf("unexpected agent config %v", a)
	}
	conv := a["conversation_config"].(map[string]any)
	if conv["max_duration"] != float64(300) || conv["silence_timeout"] != float64(10) {
		t.Fatalf("unexpected conversation config %v", conv)
	}

	if _, err := cl.PlaceCall(ctx, domain.CallRequest{Product: "xbox series x", Seller: domain.Offer{Seller: domain.Seller{Name: "Target"}}}); err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("expected a second agent for a new product, got %d", len(created))
	}
}

func TestClient_CreateAgentAndPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{"agents": []any{}})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "agent-42", "name": "Deal Finder for iphone 15"})
		}
	}))
	defer ts.Close()

	good, _ := omnidim.New(ts.URL, "good", "")
	a, err := good.CreateAgent(context.Background(), "iphone 15", []string{"Apple Store"})
	if err != nil || a.ID != "agent-42" || a.Product != "iphone 15" || a.Demo {
		t.Fatalf("CreateAgent = %+v, %v", a, err)
	}
	if err := good.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	bad, _ := omnidim.New(ts.URL, "bad", "")
	if err := bad.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail with a bad key")
	}
}

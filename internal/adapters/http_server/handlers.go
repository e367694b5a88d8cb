package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"dealfinder/internal/app"
	"dealfinder/internal/catalog"
	"dealfinder/internal/domain"
	"dealfinder/internal/pricing"
)

// Integrations reports which outside services are wired in. Anything missing
// runs on fabricated data.
type Integrations struct {
	Search  bool   `json:"serper"`
	Voice   string `json:"voice,omitempty"` // omnidimension|twilio
	Email   bool   `json:"resend"`
	Storage string `json:"storage"` // mysql|jsonfile
	Cache   string `json:"cache"`   // redis|memory
}

func (i Integrations) Demo() bool { return !i.Search || i.Voice == "" || !i.Email }

type Handlers struct {
	Est          *pricing.Estimator
	Search       *app.SearchService
	Calls        *app.CallService
	Reports      *app.ReportService
	Logs         *app.LogService
	Agents       *app.AgentService
	Integrations Integrations
	// Checks holds one pinger per configured service for ?check=true.
	Checks map[string]domain.Pinger
}

const checkTimeout = 5 * time.Second

type problem struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Status      int      `json:"status"`
	Detail      string   `json:"detail,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/integrations", h.integrations)
		r.Post("/agents", h.createAgent)
		r.Post("/estimate", h.estimate)
		r.Post("/sellers/search", h.searchSellers)
		r.Post("/calls", h.negotiate)
		r.Get("/calls/{id}", h.callStatus)
		r.Post("/webhooks/voice", h.voiceWebhook)
		r.Post("/reports/email", h.emailReport)
		r.Post("/logs", h.storeLog)
		r.Get("/logs", h.listLogs)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, suggestions ...string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Suggestions: suggestions}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequest
	var ipe *catalog.InvalidProductError
	switch {
	case errors.As(err, &br):
		writeProblem(w, http.StatusBadRequest, br.title, br.detail)
	case errors.As(err, &ipe):
		writeProblem(w, http.StatusUnprocessableEntity, "Product Not Available", ipe.Error(), ipe.Suggestions...)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrNoDeals), errors.Is(err, domain.ErrInvalidRecordType):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Str("route", routeOf(r)).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

// writeCacheable is writeJSON for GETs, with a weak ETag so polling clients
// can short-circuit on If-None-Match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

func (h *Handlers) integrations(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"integrations": h.Integrations,
		"demoMode":     h.Integrations.Demo(),
	}
	if check, _ := strconv.ParseBool(r.URL.Query().Get("check")); check {
		resp["checks"] = app.CheckIntegrations(r.Context(), h.Checks, checkTimeout)
	}
	writeJSON(w, http.StatusOK, resp)
}

type agentRequest struct {
	Product   string   `json:"product" validate:"required,max=200"`
	Resellers []string `json:"resellers" validate:"max=10,dive,max=100"`
}

func (h *Handlers) createAgent(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := read(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Agents.Create(r.Context(), req.Product, req.Resellers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type estimateRequest struct {
	Product string `json:"product" validate:"required,max=200"`
	Seller  string `json:"seller" validate:"max=100"`
	Jitter  bool   `json:"jitter"`
}

func (h *Handlers) estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := read(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Est.Quote(req.Product, req.Seller, req.Jitter))
}

type searchRequest struct {
	Product string `json:"product" validate:"required,max=200"`
}

func (h *Handlers) searchSellers(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := read(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Search.FindSellers(r.Context(), req.Product)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type negotiateRequest struct {
	Product string         `json:"product" validate:"required,max=200"`
	Sellers []domain.Offer `json:"sellers" validate:"required,min=1,max=10,dive"`
}

type negotiateResponse struct {
	Product      string              `json:"product"`
	Results      []domain.CallResult `json:"results"`
	Deals        []domain.Deal       `json:"deals"`
	BestDeal     domain.Deal         `json:"bestDeal"`
	TotalSavings int                 `json:"totalSavings"`
	LogID        string              `json:"logId,omitempty"`
}

func (h *Handlers) negotiate(w http.ResponseWriter, r *http.Request) {
	var req negotiateRequest
	if err := read(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	results, err := h.Calls.Negotiate(r.Context(), req.Product, req.Sellers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deals := h.Calls.Deals(results)
	resp := negotiateResponse{Product: req.Product, Results: results, Deals: deals}
	if len(deals) > 0 {
		sum := app.Summarize(req.Product, deals, time.Now())
		resp.BestDeal, resp.TotalSavings = sum.Best, sum.TotalSavings
		// the log is best effort; the caller already has the deals
		if rec, err := h.Logs.LogDeals(r.Context(), req.Product, deals); err != nil {
			log.Warn().Err(err).Str("product", req.Product).Msg("log deals failed")
		} else {
			resp.LogID = rec.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) callStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Calls.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, st)
}

func (h *Handlers) voiceWebhook(w http.ResponseWriter, r *http.Request) {
	var ev domain.CallEvent
	if err := read(w, r, &ev); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Calls.HandleEvent(r.Context(), ev); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": true, "callId": ev.CallID})
}

type reportRequest struct {
	Email   string        `json:"email"`
	Product string        `json:"product" validate:"required,max=200"`
	Deals   []domain.Deal `json:"deals" validate:"dive"`
}

func (h *Handlers) emailReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := read(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rc, err := h.Reports.Send(r.Context(), req.Email, req.Product, req.Deals)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

type logRequest struct {
	Type string         `json:"type" validate:"required"`
	Data map[string]any `json:"data" validate:"required"`
}

func (h *Handlers) storeLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := read(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.Logs.Store(r.Context(), strings.ToLower(req.Type), req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": rec.ID, "timestamp": rec.Timestamp})
}

func (h *Handlers) listLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 1000 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 1000")
			return
		}
		limit = l
	}
	recs, err := h.Logs.List(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	writeCacheable(w, r, map[string]any{"records": recs, "count": len(recs)})
}

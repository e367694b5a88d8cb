package app

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/xid"
	"github.com/samber/lo"

	"dealfinder/internal/domain"
)

var recordTypeRe = regexp.MustCompile(`^[a-z_]{1,32}$`)

// LogService appends structured records to the data log.
type LogService struct {
	repo domain.RecordRepository
	now  func() time.Time
}

func NewLogService(repo domain.RecordRepository) *LogService {
	return &LogService{repo: repo, now: time.Now}
}

func (s *LogService) Store(ctx context.Context, typ string, payload any) (domain.Record, error) {
	if !recordTypeRe.MatchString(typ) {
		return domain.Record{}, fmt.Errorf("%w: %q", domain.ErrInvalidRecordType, typ)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.Record{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	rec := domain.Record{
		ID:        typ + "_" + xid.New().String(),
		Type:      typ,
		Timestamp: s.now().UTC(),
		Payload:   raw,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return domain.Record{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// List returns records newest first. An empty typ matches every type.
func (s *LogService) List(ctx context.Context, typ string, limit int) ([]domain.Record, error) {
	if typ != "" && !recordTypeRe.MatchString(typ) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRecordType, typ)
	}
	return s.repo.List(ctx, typ, limit)
}

type dealsEntry struct {
	Product      string        `json:"product"`
	TotalDeals   int           `json:"totalDeals"`
	BestPrice    int           `json:"bestPrice"`
	BestSeller   string        `json:"bestSeller"`
	TotalSavings int           `json:"totalSavings"`
	Sellers      []string      `json:"sellers"`
	Deals        []domain.Deal `json:"deals"`
}

func (s *LogService) LogDeals(ctx context.Context, product string, deals []domain.Deal) (domain.Record, error) {
	if len(deals) == 0 {
		return domain.Record{}, domain.ErrNoDeals
	}
	sum := Summarize(product, deals, s.now())
	return s.Store(ctx, "deals", dealsEntry{
		Product:      product,
		TotalDeals:   len(deals),
		BestPrice:    sum.Best.FinalPrice,
		BestSeller:   sum.Best.SellerName,
		TotalSavings: sum.TotalSavings,
		Sellers:      lo.Map(deals, func(d domain.Deal, _ int) string { return d.SellerName }),
		Deals:        deals,
	})
}

package app

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"dealfinder/internal/adapters/observability"
	"dealfinder/internal/domain"
)

const (
	MethodResend = "resend"
	MethodStored = "stored"
)

var funcs = map[string]any{
	"inc":  func(i int) int { return i + 1 },
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04 MST") },
}

var textReport = texttemplate.Must(texttemplate.New("text").Funcs(funcs).Parse(
	`Best deals for {{.Product}}

Best price: ${{.Best.FinalPrice}} at {{.Best.SellerName}}
Total savings across sellers: ${{.TotalSavings}}

{{range $i, $d := .Deals}}{{inc $i}}. {{$d.SellerName}}: ${{$d.FinalPrice}} (was ${{$d.OriginalPrice}}, {{$d.SavingsPercent}}% off){{if $d.Phone}} phone {{$d.Phone}}{{end}}{{if $d.Delivery}} delivery {{$d.Delivery}}{{end}}
{{end}}
Generated {{date .GeneratedAt}}
`))

var htmlReport = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(
	`<h2>Best deals for {{.Product}}</h2>
<p><strong>Best price:</strong> ${{.Best.FinalPrice}} at {{.Best.SellerName}}<br>
<strong>Total savings:</strong> ${{.TotalSavings}}</p>
<table>
<tr><th>#</th><th>Seller</th><th>Price</th><th>Was</th><th>Savings</th><th>Phone</th><th>Delivery</th></tr>
{{range $i, $d := .Deals}}<tr><td>{{inc $i}}</td><td>{{$d.SellerName}}</td><td>${{$d.FinalPrice}}</td><td>${{$d.OriginalPrice}}</td><td>{{$d.SavingsPercent}}%</td><td>{{$d.Phone}}</td><td>{{$d.Delivery}}</td></tr>
{{end}}</table>
<p><small>Generated {{date .GeneratedAt}}</small></p>
`))

type ReportService struct {
	mailer   domain.Mailer // nil means reports are only stored
	logs     *LogService
	validate *validator.Validate
	now      func() time.Time
}

func NewReportService(m domain.Mailer, logs *LogService) *ReportService {
	return &ReportService{mailer: m, logs: logs, validate: validator.New(), now: time.Now}
}

type storedEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Product string `json:"product"`
	Text    string `json:"text"`
	Deals   int    `json:"totalDeals"`
	Savings int    `json:"totalSavings"`
}

// Send mails the deal report to recipient. When no mailer is configured, or
// the mailer fails, the report is stored in the data log instead.
func (s *ReportService) Send(ctx context.Context, recipient, product string, deals []domain.Deal) (domain.ReportReceipt, error) {
	recipient = strings.TrimSpace(recipient)
	if err := s.validate.Var(recipient, "required,email"); err != nil {
		return domain.ReportReceipt{}, domain.ErrInvalidEmail
	}
	if len(deals) == 0 {
		return domain.ReportReceipt{}, domain.ErrNoDeals
	}

	sum := Summarize(product, deals, s.now())
	email, err := render(recipient, sum)
	if err != nil {
		return domain.ReportReceipt{}, err
	}

	if s.mailer == nil {
		observability.ObserveFallback("email", "unconfigured", nil)
	} else {
		id, err := s.mailer.Send(ctx, email)
		if err == nil {
			log.Info().Str("email_id", id).Str("product", product).Msg("report sent")
			return domain.ReportReceipt{ID: id, Recipient: recipient, Method: MethodResend, Sent: true, Timestamp: s.now().UTC()}, nil
		}
		observability.ObserveFallback("email", "error", err)
	}

	rec, err := s.logs.Store(ctx, "email", storedEmail{
		To:      recipient,
		Subject: email.Subject,
		Product: product,
		Text:    email.Text,
		Deals:   len(deals),
		Savings: sum.TotalSavings,
	})
	if err != nil {
		return domain.ReportReceipt{}, fmt.Errorf("store report: %w", err)
	}
	return domain.ReportReceipt{ID: rec.ID, Recipient: recipient, Method: MethodStored, Timestamp: rec.Timestamp}, nil
}

func render(to string, sum DealSummary) (domain.Email, error) {
	var text, html bytes.Buffer
	if err := textReport.Execute(&text, sum); err != nil {
		return domain.Email{}, fmt.Errorf("render text report: %w", err)
	}
	if err := htmlReport.Execute(&html, sum); err != nil {
		return domain.Email{}, fmt.Errorf("render html report: %w", err)
	}
	return domain.Email{
		To:      to,
		Subject: fmt.Sprintf("Best Deals Found for %s - AI Negotiated Results", sum.Product),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

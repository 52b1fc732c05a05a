package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nileshgupta/stocklens/internal/cache"
	"github.com/nileshgupta/stocklens/internal/genai"
	"github.com/nileshgupta/stocklens/internal/model"
)

// Generator is the slice of the API client the service needs.
// Satisfied by *genai.Client.
type Generator interface {
	GenerateWithFallback(ctx context.Context, params genai.GenerateParams) (*genai.Result, error)
}

// Recorder persists finished insights. Satisfied by *history.Store.
type Recorder interface {
	Save(ctx context.Context, ins model.Insight) error
}

// Publisher broadcasts events to connected dashboard clients.
// Satisfied by *push.Hub.
type Publisher interface {
	Broadcast(event string, payload any)
}

// Service implements the dashboard operations.
type Service struct {
	gen         Generator
	status      *cache.StatusCache
	recorder    Recorder
	publisher   Publisher
	logger      *slog.Logger
	temperature float64

	// Clock, swappable in tests.
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder attaches the insight audit log. Nil disables recording.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithPublisher attaches the push hub. Nil disables broadcasting.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTemperature sets the sampling temperature for every operation.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates the insight service around a generator and the
// market-status cache.
func NewService(gen Generator, status *cache.StatusCache, opts ...Option) *Service {
	s := &Service{
		gen:         gen,
		status:      status,
		logger:      slog.Default(),
		temperature: 0.3,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MarketStatus reports whether the NSE is open, serving the cached
// answer while it is fresh.
func (s *Service) MarketStatus(ctx context.Context) (model.MarketStatus, error) {
	if cached, ok := s.status.Get(); ok {
		s.logger.Debug("market status served from cache")
		return cached, nil
	}
	return s.RefreshMarketStatus(ctx)
}

// RefreshMarketStatus asks the model regardless of cache freshness and
// stores the answer, restarting the window.
func (s *Service) RefreshMarketStatus(ctx context.Context) (model.MarketStatus, error) {
	res, err := s.gen.GenerateWithFallback(ctx, genai.GenerateParams{
		System:      marketSystem,
		Prompt:      statusPrompt(s.now()),
		Schema:      statusSchema,
		Temperature: s.temperature,
		Search:      true,
	})
	if err != nil {
		return model.MarketStatus{}, fmt.Errorf("market status: %w", err)
	}

	var raw struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := decode(res.Response.Text(), &raw); err != nil {
		return model.MarketStatus{}, fmt.Errorf("market status: %w", err)
	}

	status := model.MarketStatus{
		Status:    model.NormalizeStatus(raw.Status),
		Reason:    raw.Reason,
		Citations: toCitations(res.Response.Sources()),
	}

	s.status.Put(status)
	if s.publisher != nil {
		s.publisher.Broadcast("status", status)
	}
	s.record(ctx, model.KindStatus, "", res.Model, status)

	return status, nil
}

// SessionPulse recaps the most recent completed trading session.
func (s *Service) SessionPulse(ctx context.Context) (*model.SessionPulse, error) {
	res, err := s.gen.GenerateWithFallback(ctx, genai.GenerateParams{
		System:      marketSystem,
		Prompt:      pulsePrompt(s.now()),
		Schema:      pulseSchema,
		Temperature: s.temperature,
		Search:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("session pulse: %w", err)
	}

	var pulse model.SessionPulse
	if err := decode(res.Response.Text(), &pulse); err != nil {
		return nil, fmt.Errorf("session pulse: %w", err)
	}
	pulse.Citations = toCitations(res.Response.Sources())

	s.record(ctx, model.KindPulse, "", res.Model, pulse)

	return &pulse, nil
}

// ExplainStock explains the recent price action of one NSE stock.
func (s *Service) ExplainStock(ctx context.Context, symbol string) (*model.StockInsight, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	res, err := s.gen.GenerateWithFallback(ctx, genai.GenerateParams{
		System:      marketSystem,
		Prompt:      explainPrompt(symbol),
		Schema:      explainSchema,
		Temperature: s.temperature,
		Search:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("explain %s: %w", symbol, err)
	}

	var insight model.StockInsight
	if err := decode(res.Response.Text(), &insight); err != nil {
		return nil, fmt.Errorf("explain %s: %w", symbol, err)
	}
	insight.Symbol = symbol
	insight.Citations = toCitations(res.Response.Sources())

	s.record(ctx, model.KindExplain, symbol, res.Model, insight)

	return &insight, nil
}

// CompareStocks compares two NSE stocks side by side.
func (s *Service) CompareStocks(ctx context.Context, first, second string) (*model.Comparison, error) {
	first = normalizeSymbol(first)
	second = normalizeSymbol(second)
	if first == "" || second == "" {
		return nil, fmt.Errorf("two symbols are required")
	}

	res, err := s.gen.GenerateWithFallback(ctx, genai.GenerateParams{
		System:      marketSystem,
		Prompt:      comparePrompt(first, second),
		Schema:      compareSchema,
		Temperature: s.temperature,
		Search:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("compare %s/%s: %w", first, second, err)
	}

	var cmp model.Comparison
	if err := decode(res.Response.Text(), &cmp); err != nil {
		return nil, fmt.Errorf("compare %s/%s: %w", first, second, err)
	}
	cmp.FirstSymbol = first
	cmp.SecondSymbol = second
	cmp.Citations = toCitations(res.Response.Sources())

	s.record(ctx, model.KindCompare, first+" vs "+second, res.Model, cmp)

	return &cmp, nil
}

// Discover suggests stocks that fit a theme.
func (s *Service) Discover(ctx context.Context, theme string) ([]model.Suggestion, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, fmt.Errorf("theme is required")
	}

	res, err := s.gen.GenerateWithFallback(ctx, genai.GenerateParams{
		System:      marketSystem,
		Prompt:      discoverPrompt(theme),
		Schema:      discoverSchema,
		Temperature: s.temperature,
		Search:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", theme, err)
	}

	var suggestions []model.Suggestion
	if err := decode(res.Response.Text(), &suggestions); err != nil {
		return nil, fmt.Errorf("discover %q: %w", theme, err)
	}

	s.record(ctx, model.KindDiscover, theme, res.Model, suggestions)

	return suggestions, nil
}

// Rebalance reviews a portfolio and proposes an action per holding.
func (s *Service) Rebalance(ctx context.Context, holdings []model.Holding) (*model.RebalancePlan, error) {
	if len(holdings) == 0 {
		return nil, fmt.Errorf("at least one holding is required")
	}

	hs := make([]model.Holding, len(holdings))
	copy(hs, holdings)
	for i := range hs {
		hs[i].Symbol = normalizeSymbol(hs[i].Symbol)
		if hs[i].Symbol == "" {
			return nil, fmt.Errorf("holding %d: symbol is required", i)
		}
	}

	res, err := s.gen.GenerateWithFallback(ctx, genai.GenerateParams{
		System:      marketSystem,
		Prompt:      rebalancePrompt(hs),
		Schema:      rebalanceSchema,
		Temperature: s.temperature,
		Search:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("rebalance: %w", err)
	}

	var plan model.RebalancePlan
	if err := decode(res.Response.Text(), &plan); err != nil {
		return nil, fmt.Errorf("rebalance: %w", err)
	}
	plan.Citations = toCitations(res.Response.Sources())

	s.record(ctx, model.KindRebalance, fmt.Sprintf("%d holdings", len(hs)), res.Model, plan)

	return &plan, nil
}

// record persists and broadcasts a finished insight. Failures are
// logged, never surfaced.
func (s *Service) record(ctx context.Context, kind, subject, modelName string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal insight payload", "kind", kind, "error", err)
		return
	}

	ins := model.Insight{
		ID:        uuid.New(),
		Kind:      kind,
		Subject:   subject,
		Model:     modelName,
		Payload:   data,
		CreatedAt: s.now().UTC(),
	}

	if s.recorder != nil {
		if err := s.recorder.Save(ctx, ins); err != nil {
			s.logger.Error("save insight", "kind", kind, "id", ins.ID, "error", err)
		}
	}
	if s.publisher != nil {
		s.publisher.Broadcast("insight", ins)
	}
}

func toCitations(sources []genai.WebSource) []model.Citation {
	if len(sources) == 0 {
		return nil
	}
	out := make([]model.Citation, len(sources))
	for i, src := range sources {
		out[i] = model.Citation{Title: src.Title, URL: src.URI}
	}
	return out
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

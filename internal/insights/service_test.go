package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nileshgupta/stocklens/internal/cache"
	"github.com/nileshgupta/stocklens/internal/genai"
	"github.com/nileshgupta/stocklens/internal/model"
)

// stubGenerator satisfies Generator without any HTTP.
type stubGenerator struct {
	calls      int
	lastParams genai.GenerateParams
	respond    func(params genai.GenerateParams) (*genai.Result, error)
}

func (g *stubGenerator) GenerateWithFallback(_ context.Context, params genai.GenerateParams) (*genai.Result, error) {
	g.calls++
	g.lastParams = params
	return g.respond(params)
}

func textResult(modelName, text string) *genai.Result {
	return &genai.Result{
		Model: modelName,
		Response: &genai.GenerateResponse{
			Candidates: []genai.Candidate{{
				Content: genai.Content{Parts: []genai.Part{{Text: text}}},
			}},
		},
	}
}

func groundedResult(modelName, text string, sources ...genai.WebSource) *genai.Result {
	res := textResult(modelName, text)
	chunks := make([]genai.GroundingChunk, len(sources))
	for i := range sources {
		chunks[i] = genai.GroundingChunk{Web: &sources[i]}
	}
	res.Response.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{GroundingChunks: chunks}
	return res
}

type stubRecorder struct {
	saved []model.Insight
	err   error
}

func (r *stubRecorder) Save(_ context.Context, ins model.Insight) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, ins)
	return nil
}

type publishedEvent struct {
	event   string
	payload any
}

type stubPublisher struct {
	events []publishedEvent
}

func (p *stubPublisher) Broadcast(event string, payload any) {
	p.events = append(p.events, publishedEvent{event: event, payload: payload})
}

func newTestService(gen Generator, ttl time.Duration, opts ...Option) *Service {
	return NewService(gen, cache.New(ttl, nil), opts...)
}

func TestMarketStatusServesFromCache(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("gemini-2.5-flash", `{"status":"OPEN","reason":"regular session"}`), nil
	}}
	svc := newTestService(gen, 80*time.Millisecond)

	first, err := svc.MarketStatus(context.Background())
	if err != nil {
		t.Fatalf("MarketStatus() error: %v", err)
	}
	if first.Status != model.StatusOpen {
		t.Errorf("status = %q, want %q", first.Status, model.StatusOpen)
	}
	if first.Reason != "regular session" {
		t.Errorf("reason = %q", first.Reason)
	}
	if gen.calls != 1 {
		t.Fatalf("calls after first read = %d, want 1", gen.calls)
	}

	// Within the window nothing new is requested.
	if _, err := svc.MarketStatus(context.Background()); err != nil {
		t.Fatalf("MarketStatus() error: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("calls after cached read = %d, want 1", gen.calls)
	}

	// Past the window exactly one new request is made.
	time.Sleep(100 * time.Millisecond)
	if _, err := svc.MarketStatus(context.Background()); err != nil {
		t.Fatalf("MarketStatus() error: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("calls after expiry = %d, want 2", gen.calls)
	}
}

func TestMarketStatusNormalizesUnrecognized(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("gemini-2.5-flash", `{"status":"probably open","reason":"unclear"}`), nil
	}}
	svc := newTestService(gen, time.Minute)

	got, err := svc.MarketStatus(context.Background())
	if err != nil {
		t.Fatalf("MarketStatus() error: %v", err)
	}
	if got.Status != model.StatusUnknown {
		t.Errorf("status = %q, want %q", got.Status, model.StatusUnknown)
	}
}

func TestRefreshMarketStatusBypassesCache(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("gemini-2.5-flash", `{"status":"CLOSED","reason":"weekend"}`), nil
	}}
	svc := newTestService(gen, time.Hour)

	if _, err := svc.MarketStatus(context.Background()); err != nil {
		t.Fatalf("MarketStatus() error: %v", err)
	}
	if _, err := svc.RefreshMarketStatus(context.Background()); err != nil {
		t.Fatalf("RefreshMarketStatus() error: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("calls after refresh = %d, want 2", gen.calls)
	}

	// The refreshed answer is cached again.
	if _, err := svc.MarketStatus(context.Background()); err != nil {
		t.Fatalf("MarketStatus() error: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("calls after read following refresh = %d, want 2", gen.calls)
	}
}

func TestMarketStatusRequestShape(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("m", `{"status":"OPEN","reason":"ok"}`), nil
	}}
	svc := newTestService(gen, time.Minute, WithTemperature(0.7))

	if _, err := svc.MarketStatus(context.Background()); err != nil {
		t.Fatalf("MarketStatus() error: %v", err)
	}

	p := gen.lastParams
	if !p.Search {
		t.Error("expected search grounding to be requested")
	}
	if p.Schema != statusSchema {
		t.Error("expected the status schema")
	}
	if p.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", p.Temperature)
	}
	if p.System != marketSystem {
		t.Error("expected the shared system instruction")
	}
	if !strings.Contains(p.Prompt, "NSE") {
		t.Errorf("prompt does not mention the exchange: %q", p.Prompt)
	}
}

func TestSessionPulse(t *testing.T) {
	payload := `{
		"headline": "Benchmarks end higher",
		"summary": "IT led the advance.",
		"indices": [{"name":"NIFTY 50","close":24210.5,"changePercent":0.8}],
		"gainers": [{"symbol":"TCS","note":"strong deal wins"}],
		"losers": [{"symbol":"ONGC","note":"crude slipped"}],
		"sectors": [{"name":"IT","trend":"UP","note":"earnings optimism"}]
	}`
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return groundedResult("gemini-2.0-flash", "Here is the recap:\n"+payload,
			genai.WebSource{URI: "https://example.com/markets", Title: "Market wrap"}), nil
	}}
	svc := newTestService(gen, time.Minute)

	pulse, err := svc.SessionPulse(context.Background())
	if err != nil {
		t.Fatalf("SessionPulse() error: %v", err)
	}
	if pulse.Headline != "Benchmarks end higher" {
		t.Errorf("headline = %q", pulse.Headline)
	}
	if len(pulse.Indices) != 1 || pulse.Indices[0].Name != "NIFTY 50" {
		t.Errorf("indices = %+v", pulse.Indices)
	}
	if len(pulse.Sectors) != 1 || pulse.Sectors[0].Trend != "UP" {
		t.Errorf("sectors = %+v", pulse.Sectors)
	}
	if len(pulse.Citations) != 1 || pulse.Citations[0].URL != "https://example.com/markets" {
		t.Errorf("citations = %+v", pulse.Citations)
	}
}

func TestExplainStockNormalizesSymbol(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("gemini-2.5-flash", `{"summary":"up on results","drivers":[],"sentiment":"POSITIVE","risks":[]}`), nil
	}}
	rec := &stubRecorder{}
	svc := newTestService(gen, time.Minute, WithRecorder(rec))

	insight, err := svc.ExplainStock(context.Background(), "  infy ")
	if err != nil {
		t.Fatalf("ExplainStock() error: %v", err)
	}
	if insight.Symbol != "INFY" {
		t.Errorf("symbol = %q, want INFY", insight.Symbol)
	}
	if !strings.Contains(gen.lastParams.Prompt, "INFY") {
		t.Errorf("prompt does not carry the normalized symbol: %q", gen.lastParams.Prompt)
	}

	if len(rec.saved) != 1 {
		t.Fatalf("recorded %d insights, want 1", len(rec.saved))
	}
	got := rec.saved[0]
	if got.Kind != model.KindExplain || got.Subject != "INFY" || got.Model != "gemini-2.5-flash" {
		t.Errorf("recorded insight = %+v", got)
	}
	var back model.StockInsight
	if err := json.Unmarshal(got.Payload, &back); err != nil {
		t.Fatalf("recorded payload does not unmarshal: %v", err)
	}
	if back.Summary != "up on results" {
		t.Errorf("payload summary = %q", back.Summary)
	}
}

func TestExplainStockRequiresSymbol(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		t.Fatal("generator must not be called")
		return nil, nil
	}}
	svc := newTestService(gen, time.Minute)

	if _, err := svc.ExplainStock(context.Background(), "   "); err == nil {
		t.Fatal("expected an error for a blank symbol")
	}
	if gen.calls != 0 {
		t.Errorf("calls = %d, want 0", gen.calls)
	}
}

func TestCompareStocksSetsSymbols(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("m", `{"rows":[{"metric":"valuation","first":"34x","second":"28x","edge":"SECOND"}],"verdict":"close call"}`), nil
	}}
	rec := &stubRecorder{}
	svc := newTestService(gen, time.Minute, WithRecorder(rec))

	cmp, err := svc.CompareStocks(context.Background(), "tcs", "infy")
	if err != nil {
		t.Fatalf("CompareStocks() error: %v", err)
	}
	if cmp.FirstSymbol != "TCS" || cmp.SecondSymbol != "INFY" {
		t.Errorf("symbols = %q/%q", cmp.FirstSymbol, cmp.SecondSymbol)
	}
	if len(cmp.Rows) != 1 || cmp.Rows[0].Edge != "SECOND" {
		t.Errorf("rows = %+v", cmp.Rows)
	}
	if rec.saved[0].Subject != "TCS vs INFY" {
		t.Errorf("subject = %q", rec.saved[0].Subject)
	}
}

func TestCompareStocksRequiresBothSymbols(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		t.Fatal("generator must not be called")
		return nil, nil
	}}
	svc := newTestService(gen, time.Minute)

	if _, err := svc.CompareStocks(context.Background(), "TCS", ""); err == nil {
		t.Fatal("expected an error for a missing symbol")
	}
}

func TestDiscoverReturnsArray(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("m", "Suggestions:\n```json\n[{\"symbol\":\"IRCTC\",\"name\":\"IRCTC Ltd\",\"sector\":\"Travel\",\"rationale\":\"rail traffic growth\",\"risk\":\"fare regulation\"}]\n```"), nil
	}}
	svc := newTestService(gen, time.Minute)

	got, err := svc.Discover(context.Background(), "rail travel boom")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "IRCTC" {
		t.Errorf("suggestions = %+v", got)
	}
	if !strings.Contains(gen.lastParams.Prompt, "rail travel boom") {
		t.Errorf("prompt does not carry the theme: %q", gen.lastParams.Prompt)
	}
}

func TestRebalanceValidatesHoldings(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		t.Fatal("generator must not be called")
		return nil, nil
	}}
	svc := newTestService(gen, time.Minute)

	if _, err := svc.Rebalance(context.Background(), nil); err == nil {
		t.Error("expected an error for an empty portfolio")
	}
	if _, err := svc.Rebalance(context.Background(), []model.Holding{{Symbol: " ", Quantity: 1}}); err == nil {
		t.Error("expected an error for a blank holding symbol")
	}
	if gen.calls != 0 {
		t.Errorf("calls = %d, want 0", gen.calls)
	}
}

func TestRebalanceKeepsCallerHoldings(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("m", `{"actions":[{"symbol":"TCS","action":"HOLD","rationale":"steady","targetWeightPercent":25}],"notes":["diversify beyond IT"]}`), nil
	}}
	svc := newTestService(gen, time.Minute)

	holdings := []model.Holding{{Symbol: "tcs", Quantity: 10, AvgBuyPrice: 3200}}
	plan, err := svc.Rebalance(context.Background(), holdings)
	if err != nil {
		t.Fatalf("Rebalance() error: %v", err)
	}
	if holdings[0].Symbol != "tcs" {
		t.Errorf("caller slice mutated: %+v", holdings)
	}
	if !strings.Contains(gen.lastParams.Prompt, "- TCS: 10 shares") {
		t.Errorf("prompt does not list the holding: %q", gen.lastParams.Prompt)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].TargetWeight != 25 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestUnparseableOutputKeepsKind(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("m", "Sorry, I cannot help with that."), nil
	}}
	svc := newTestService(gen, time.Minute)

	_, err := svc.ExplainStock(context.Background(), "TCS")
	if err == nil {
		t.Fatal("expected an error")
	}
	var uerr *UnparseableError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnparseableError through the wrap, got %v", err)
	}
}

func TestGeneratorErrorKeepsKind(t *testing.T) {
	exhausted := &genai.ExhaustedError{Attempts: []genai.Attempt{
		{Model: "gemini-2.5-flash", Err: fmt.Errorf("boom")},
	}}
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return nil, exhausted
	}}
	svc := newTestService(gen, time.Minute)

	_, err := svc.SessionPulse(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	var exerr *genai.ExhaustedError
	if !errors.As(err, &exerr) {
		t.Fatalf("expected *genai.ExhaustedError through the wrap, got %v", err)
	}
	if len(exerr.Attempts) != 1 {
		t.Errorf("attempts = %+v", exerr.Attempts)
	}
}

func TestRecorderFailureIsNotFatal(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("m", `{"summary":"flat","drivers":[],"sentiment":"NEUTRAL","risks":[]}`), nil
	}}
	rec := &stubRecorder{err: fmt.Errorf("database unavailable")}
	svc := newTestService(gen, time.Minute, WithRecorder(rec))

	if _, err := svc.ExplainStock(context.Background(), "TCS"); err != nil {
		t.Fatalf("ExplainStock() error: %v", err)
	}
}

func TestRefreshBroadcastsStatusAndInsight(t *testing.T) {
	gen := &stubGenerator{respond: func(genai.GenerateParams) (*genai.Result, error) {
		return textResult("m", `{"status":"OPEN","reason":"regular session"}`), nil
	}}
	pub := &stubPublisher{}
	svc := newTestService(gen, time.Minute, WithPublisher(pub))

	if _, err := svc.RefreshMarketStatus(context.Background()); err != nil {
		t.Fatalf("RefreshMarketStatus() error: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("events = %d, want 2", len(pub.events))
	}
	if pub.events[0].event != "status" {
		t.Errorf("first event = %q, want status", pub.events[0].event)
	}
	if pub.events[1].event != "insight" {
		t.Errorf("second event = %q, want insight", pub.events[1].event)
	}
	if _, ok := pub.events[1].payload.(model.Insight); !ok {
		t.Errorf("insight payload is %T", pub.events[1].payload)
	}
}

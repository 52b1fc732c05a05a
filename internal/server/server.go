package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nileshgupta/stocklens/internal/cache"
	"github.com/nileshgupta/stocklens/internal/model"
	"github.com/nileshgupta/stocklens/internal/push"
)

// DefaultRequestTimeout bounds one model-backed request, long enough to
// ride out a full fallback cascade.
const DefaultRequestTimeout = 4 * time.Minute

// Insights is the slice of the insight service the handlers need.
type Insights interface {
	MarketStatus(ctx context.Context) (model.MarketStatus, error)
	SessionPulse(ctx context.Context) (*model.SessionPulse, error)
	ExplainStock(ctx context.Context, symbol string) (*model.StockInsight, error)
	CompareStocks(ctx context.Context, first, second string) (*model.Comparison, error)
	Discover(ctx context.Context, theme string) ([]model.Suggestion, error)
	Rebalance(ctx context.Context, holdings []model.Holding) (*model.RebalancePlan, error)
}

// HistoryReader lists stored insights.
type HistoryReader interface {
	Recent(ctx context.Context, kind string, limit int) ([]model.Insight, error)
}

// Pinger reports storage health. Satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the API dependencies. History, hub, db, and status
// cache are optional; the matching surfaces degrade when absent.
type Server struct {
	insights Insights
	history  HistoryReader
	hub      *push.Hub
	db       Pinger
	status   *cache.StatusCache
	logger   *slog.Logger

	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the /api/history route.
func WithHistory(h HistoryReader) Option {
	return func(s *Server) { s.history = h }
}

// WithHub mounts the WebSocket endpoint and reports connected clients
// in /health.
func WithHub(h *push.Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithDB adds a storage probe to /health.
func WithDB(db Pinger) Option {
	return func(s *Server) { s.db = db }
}

// WithStatusCache reports cache warmth in /health.
func WithStatusCache(c *cache.StatusCache) Option {
	return func(s *Server) { s.status = c }
}

// WithRequestTimeout bounds each model-backed request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server around the insight service.
func New(svc Insights, opts ...Option) *Server {
	s := &Server{
		insights:       svc,
		logger:         slog.Default(),
		requestTimeout: DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/pulse", s.handlePulse)
	mux.HandleFunc("GET /api/explain", s.handleExplain)
	mux.HandleFunc("GET /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/discover", s.handleDiscover)
	mux.HandleFunc("POST /api/rebalance", s.handleRebalance)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.hub != nil {
		mux.Handle("GET /ws", s.hub)
	}

	return mux
}

// opCtx bounds one model-backed request.
func (s *Server) opCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

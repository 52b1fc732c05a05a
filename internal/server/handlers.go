package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nileshgupta/stocklens/internal/genai"
	"github.com/nileshgupta/stocklens/internal/insights"
	"github.com/nileshgupta/stocklens/internal/model"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.opCtx(r)
	defer cancel()

	status, err := s.insights.MarketStatus(ctx)
	if err != nil {
		s.fail(w, "market status", err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handlePulse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.opCtx(r)
	defer cancel()

	pulse, err := s.insights.SessionPulse(ctx)
	if err != nil {
		s.fail(w, "session pulse", err)
		return
	}
	s.writeJSON(w, http.StatusOK, pulse)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter symbol is required")
		return
	}

	ctx, cancel := s.opCtx(r)
	defer cancel()

	insight, err := s.insights.ExplainStock(ctx, symbol)
	if err != nil {
		s.fail(w, "explain stock", err)
		return
	}
	s.writeJSON(w, http.StatusOK, insight)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	first := strings.TrimSpace(r.URL.Query().Get("a"))
	second := strings.TrimSpace(r.URL.Query().Get("b"))
	if first == "" || second == "" {
		s.writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	ctx, cancel := s.opCtx(r)
	defer cancel()

	cmp, err := s.insights.CompareStocks(ctx, first, second)
	if err != nil {
		s.fail(w, "compare stocks", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Theme) == "" {
		s.writeError(w, http.StatusBadRequest, "theme is required")
		return
	}

	ctx, cancel := s.opCtx(r)
	defer cancel()

	suggestions, err := s.insights.Discover(ctx, req.Theme)
	if err != nil {
		s.fail(w, "discover", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}

func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Holdings []model.Holding `json:"holdings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Holdings) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one holding is required")
		return
	}
	for i, h := range req.Holdings {
		if strings.TrimSpace(h.Symbol) == "" {
			s.writeError(w, http.StatusBadRequest, "holding "+strconv.Itoa(i)+": symbol is required")
			return
		}
		if h.Quantity <= 0 {
			s.writeError(w, http.StatusBadRequest, "holding "+strconv.Itoa(i)+": quantity must be positive")
			return
		}
	}

	ctx, cancel := s.opCtx(r)
	defer cancel()

	plan, err := s.insights.Rebalance(ctx, req.Holdings)
	if err != nil {
		s.fail(w, "rebalance", err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "history storage is not configured")
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind != "" && !model.KnownKind(kind) {
		s.writeError(w, http.StatusBadRequest, "unknown kind "+strconv.Quote(kind))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := s.history.Recent(r.Context(), kind, limit)
	if err != nil {
		s.fail(w, "history", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(items),
		"insights": items,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}
	} else {
		health.Components["postgres"] = "disabled"
	}

	if s.status != nil {
		if age, ok := s.status.Age(); ok {
			health.Components["status_cache"] = map[string]any{
				"age_seconds": int(age.Seconds()),
				"ttl_seconds": int(s.status.TTL().Seconds()),
			}
		} else {
			health.Components["status_cache"] = "cold"
		}
	}

	if s.hub != nil {
		health.Components["push_clients"] = s.hub.ClientCount()
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// fail logs a service failure and writes its mapped status code.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := httpStatus(err)
	s.logger.Error(op+" failed", "error", err, "status", status)
	s.writeError(w, status, err.Error())
}

// httpStatus maps service failures onto response codes. Model-side
// failures are the upstream's fault, so they surface as bad gateway.
func httpStatus(err error) int {
	var exhausted *genai.ExhaustedError
	if errors.As(err, &exhausted) {
		return http.StatusBadGateway
	}
	var unparseable *insights.UnparseableError
	if errors.As(err, &unparseable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

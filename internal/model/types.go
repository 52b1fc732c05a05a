package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Market Status
// -----------------------------------------------------------------------------

// Status is the trading state of the exchange as reported by the model.
type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusClosed  Status = "CLOSED"
	StatusUnknown Status = "UNKNOWN"
)

// Valid reports whether s is one of the three recognized states.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed || s == StatusUnknown
}

// NormalizeStatus maps free-form model output onto a recognized Status.
// Anything unrecognized becomes StatusUnknown.
func NormalizeStatus(raw string) Status {
	s := Status(raw)
	if !s.Valid() {
		return StatusUnknown
	}
	return s
}

// MarketStatus describes whether the NSE is currently open for trading.
type MarketStatus struct {
	Status    Status     `json:"status"`    // OPEN, CLOSED, or UNKNOWN
	Reason    string     `json:"reason"`    // One-line explanation (holiday name, session hours, ...)
	Citations []Citation `json:"citations"` // Grounding sources, may be empty
}

// Citation is a source link attached to a grounded answer.
type Citation struct {
	Title string `json:"title"` // Page title, may be empty
	URL   string `json:"url"`   // Source URI
}

// -----------------------------------------------------------------------------
// Session Pulse
// -----------------------------------------------------------------------------

// IndexMove is one benchmark index row in a session pulse.
type IndexMove struct {
	Name          string  `json:"name"`          // e.g. "NIFTY 50"
	Close         float64 `json:"close"`         // Closing level
	ChangePercent float64 `json:"changePercent"` // Signed day change
}

// MoverNote is a notable gainer or loser with a one-line reason.
type MoverNote struct {
	Symbol string `json:"symbol"`
	Note   string `json:"note"`
}

// SectorTrend summarizes one sector's session.
type SectorTrend struct {
	Name  string `json:"name"`  // e.g. "IT", "Banking"
	Trend string `json:"trend"` // "UP", "DOWN", or "FLAT"
	Note  string `json:"note"`
}

// SessionPulse recaps the most recent completed trading session.
type SessionPulse struct {
	Headline  string        `json:"headline"` // One-sentence session summary
	Summary   string        `json:"summary"`  // Short paragraph
	Indices   []IndexMove   `json:"indices"`
	Gainers   []MoverNote   `json:"gainers"`
	Losers    []MoverNote   `json:"losers"`
	Sectors   []SectorTrend `json:"sectors"`
	Citations []Citation    `json:"citations"`
}

// -----------------------------------------------------------------------------
// Stock Explanation
// -----------------------------------------------------------------------------

// Driver is one identified cause behind a price move.
type Driver struct {
	Title  string `json:"title"`  // Short label (e.g. "Q1 earnings beat")
	Detail string `json:"detail"` // One or two sentences
	Impact string `json:"impact"` // "POSITIVE", "NEGATIVE", or "MIXED"
}

// StockInsight explains the recent price action of a single stock.
type StockInsight struct {
	Symbol    string     `json:"symbol"`
	Summary   string     `json:"summary"`   // What the price did and over what window
	Drivers   []Driver   `json:"drivers"`   // Why, most significant first
	Sentiment string     `json:"sentiment"` // "BULLISH", "BEARISH", or "NEUTRAL"
	Risks     []string   `json:"risks"`     // Watch items
	Citations []Citation `json:"citations"`
}

// -----------------------------------------------------------------------------
// Comparison
// -----------------------------------------------------------------------------

// ComparisonRow contrasts the two stocks on a single metric.
type ComparisonRow struct {
	Metric string `json:"metric"` // e.g. "Valuation", "1Y return"
	First  string `json:"first"`  // Value/commentary for the first symbol
	Second string `json:"second"` // Value/commentary for the second symbol
	Edge   string `json:"edge"`   // "FIRST", "SECOND", or "EVEN"
}

// Comparison is a side-by-side view of two stocks with a verdict.
type Comparison struct {
	FirstSymbol  string          `json:"firstSymbol"`
	SecondSymbol string          `json:"secondSymbol"`
	Rows         []ComparisonRow `json:"rows"`
	Verdict      string          `json:"verdict"` // Short closing take
	Citations    []Citation      `json:"citations"`
}

// -----------------------------------------------------------------------------
// Discovery
// -----------------------------------------------------------------------------

// Suggestion is one stock idea produced for a discovery theme.
type Suggestion struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`      // Company name
	Sector    string `json:"sector"`    // e.g. "Pharma"
	Rationale string `json:"rationale"` // Why it fits the theme
	Risk      string `json:"risk"`      // Primary risk
}

// -----------------------------------------------------------------------------
// Rebalancing
// -----------------------------------------------------------------------------

// Holding is one position in the portfolio submitted for review.
type Holding struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	AvgBuyPrice float64 `json:"avgBuyPrice"` // Rupees per share
}

// RebalanceAction is the recommended move for one holding.
type RebalanceAction struct {
	Symbol       string  `json:"symbol"`
	Action       string  `json:"action"` // "HOLD", "ADD", "TRIM", or "EXIT"
	Rationale    string  `json:"rationale"`
	TargetWeight float64 `json:"targetWeightPercent"` // Suggested portfolio weight
}

// RebalancePlan reviews a full portfolio.
type RebalancePlan struct {
	Actions   []RebalanceAction `json:"actions"`
	Notes     []string          `json:"notes"` // Diversification and concentration observations
	Citations []Citation        `json:"citations"`
}

// -----------------------------------------------------------------------------
// Insight Records
// -----------------------------------------------------------------------------

// Insight kinds, one per service operation.
const (
	KindStatus    = "status"
	KindPulse     = "pulse"
	KindExplain   = "explain"
	KindCompare   = "compare"
	KindDiscover  = "discover"
	KindRebalance = "rebalance"
)

// KnownKind reports whether k names an insight kind.
func KnownKind(k string) bool {
	switch k {
	case KindStatus, KindPulse, KindExplain, KindCompare, KindDiscover, KindRebalance:
		return true
	}
	return false
}

// Insight is one generated result as recorded in the audit log and
// broadcast to push clients.
type Insight struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`    // One of the Kind* constants
	Subject   string          `json:"subject"` // Symbol(s) or theme, empty for status/pulse
	Model     string          `json:"model"`   // Candidate that produced the result
	Payload   json.RawMessage `json:"payload"` // The typed result, as served to the client
	CreatedAt time.Time       `json:"createdAt"`
}

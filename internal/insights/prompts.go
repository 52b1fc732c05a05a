package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/nileshgupta/stocklens/internal/model"
)

// istZone avoids a tz database dependency; IST has no DST.
var istZone = time.FixedZone("IST", 5*3600+30*60)

// marketSystem is the shared system instruction for every operation.
const marketSystem = `You are an equity research assistant covering the Indian stock market.

Context you must respect:
- Exchanges: National Stock Exchange (NSE) and Bombay Stock Exchange (BSE); prefer NSE symbols.
- Regular trading hours are 09:15 to 15:30 IST, Monday to Friday, excluding NSE holidays.
- Currency is the Indian rupee (INR); large amounts are commonly quoted in lakh and crore.
- Benchmark indices: NIFTY 50, SENSEX, NIFTY Bank, NIFTY Midcap 100.

Ground every claim in current information from search and be specific about
dates and figures. Describe evidence and risks; never give personalized
advice to buy or sell.`

func statusPrompt(now time.Time) string {
	ist := now.In(istZone)
	return fmt.Sprintf(
		"The current time is %s. Determine whether the NSE is open for regular "+
			"trading right now. Account for weekends and NSE trading holidays. "+
			"Report the status and a one-line reason such as the holiday name or "+
			"the session hours.",
		ist.Format("Monday, 02 January 2006 15:04 IST"),
	)
}

func pulsePrompt(now time.Time) string {
	ist := now.In(istZone)
	return fmt.Sprintf(
		"Today is %s. Recap the most recent completed NSE trading session. "+
			"Cover: a one-sentence headline, a short summary paragraph, closing "+
			"levels and day change for NIFTY 50 and SENSEX, three to five notable "+
			"gainers and losers with one-line reasons, and how the major sectors "+
			"(IT, Banking, Pharma, Auto, FMCG, Energy) traded.",
		ist.Format("Monday, 02 January 2006"),
	)
}

func explainPrompt(symbol string) string {
	return fmt.Sprintf(
		"Explain the recent price action of %s on the NSE. Cover roughly the "+
			"last two weeks. Summarize what the price did, then list the concrete "+
			"drivers behind the move (earnings, orders, regulatory news, sector "+
			"moves, broader market direction), the prevailing sentiment, and the "+
			"main risks an investor should watch.",
		symbol,
	)
}

func comparePrompt(first, second string) string {
	return fmt.Sprintf(
		"Compare %s and %s as NSE-listed investments. Build rows for at least: "+
			"recent price performance, valuation, earnings trajectory, balance "+
			"sheet strength, and near-term outlook. For each row say which side "+
			"looks better. Close with a short verdict that weighs both.",
		first, second,
	)
}

func discoverPrompt(theme string) string {
	return fmt.Sprintf(
		"Suggest five NSE-listed stocks that fit this theme: %q. For each, give "+
			"the NSE symbol, company name, sector, a rationale tied to the theme "+
			"with current evidence, and the primary risk. Favor liquid, "+
			"well-covered names over micro caps.",
		theme,
	)
}

func rebalancePrompt(holdings []model.Holding) string {
	var b strings.Builder
	b.WriteString("Review this NSE portfolio and suggest a rebalancing plan.\n\nHoldings:\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "- %s: %g shares at avg ₹%.2f\n", h.Symbol, h.Quantity, h.AvgBuyPrice)
	}
	b.WriteString(
		"\nFor every holding choose HOLD, ADD, TRIM, or EXIT with a rationale " +
			"grounded in its current situation, and a suggested target weight in " +
			"percent. Then add overall notes on diversification, sector " +
			"concentration, and anything the portfolio is missing.")
	return b.String()
}

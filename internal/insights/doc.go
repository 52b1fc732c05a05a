// Package insights implements the service operations behind the
// dashboard: market status, session pulse, single-stock explanation,
// two-stock comparison, discovery, and portfolio rebalancing.
//
// Every operation follows the same path: build a prompt and response
// schema, run the model fallback chain, extract and decode the JSON in
// the reply, attach grounding citations, then record and broadcast the
// finished insight. Market status additionally consults a freshness
// cache before asking the model at all.
package insights

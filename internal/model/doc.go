// Package model defines shared data types used across the stocklens service.
//
// All types carry camelCase JSON tags because they cross two JSON
// boundaries with the same shape: the structured output requested from
// the language model, and the HTTP API consumed by the dashboard.
//
// Conventions:
//   - Symbols: NSE tickers, upper case (e.g. "INFY", "TCS")
//   - Money: rupees as float64 (display formatting is the client's job)
//   - Timestamps: time.Time (UTC)
//   - IDs: uuid.UUID for insight records
package model

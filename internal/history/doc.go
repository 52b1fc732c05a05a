// Package history is the insight audit log. Every generated insight is
// written once, keyed by ID, so the dashboard can replay what was asked
// and answered. The log is append-only; replays of an already stored ID
// are ignored.
package history

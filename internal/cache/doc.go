// Package cache holds the market-status cache.
//
// The cache keeps the single most recent market-status answer together
// with its write time. Reads within the freshness window return the
// stored value; anything older is reported as a miss and stays in place
// until the next write overwrites it. Entries are never deleted.
//
// Lookups and upstream fetches are deliberately not deduplicated: two
// concurrent callers that both miss will both recompute, and the later
// write wins. The window restarts on every write.
package cache

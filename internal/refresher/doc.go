// Package refresher keeps the market-status cache warm. It re-asks the
// model on a fixed interval so dashboard reads almost always hit the
// cache, and so connected clients see status flips without polling.
package refresher

// Package push fans out dashboard events over WebSockets. Every
// generated insight and market-status refresh is broadcast to all
// connected clients; slow clients lose messages rather than stalling
// the producer.
package push

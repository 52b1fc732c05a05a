// Package server exposes the dashboard HTTP API. Handlers delegate to
// the insights service and translate its failures into status codes:
// upstream model exhaustion and unparseable model output are
// 502 Bad Gateway, bad input is 400, everything else is 500.
package server

// Package genai provides the Generative Language API client used to
// produce market insights.
//
// REST endpoint:
//   - https://generativelanguage.googleapis.com/v1beta
//
// Authentication is a single API key sent in the x-goog-api-key header.
//
// The client carries an ordered list of model candidates. Structured
// queries run through GenerateWithFallback, which tries candidates in
// order and returns the first success; candidates that do not honor
// response schemas are instead instructed to emit raw JSON in text.
package genai

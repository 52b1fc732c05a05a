package genai

import (
	"context"
	"fmt"
	"strings"
)

// ModelCandidate is one entry in the ordered fallback list, newest and
// most capable first.
type ModelCandidate struct {
	Name             string
	StructuredOutput bool // Model honors response schemas
}

// Attempt records one failed candidate during a fallback run.
type Attempt struct {
	Model string
	Err   error
}

// ExhaustedError reports that every candidate in the fallback order
// failed. Its message carries one line per candidate, in order.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no model candidates configured"
	}

	lines := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		lines[i] = fmt.Sprintf("Model %s failed: %v", a.Model, a.Err)
	}
	return "all model candidates failed:\n" + strings.Join(lines, "\n")
}

// Unwrap exposes the per-candidate errors to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Result pairs a successful response with the candidate that produced it.
type Result struct {
	Model    string
	Response *GenerateResponse
}

// GenerateWithFallback shapes params for each configured candidate in
// order and returns the first success without trying the rest.
func (c *Client) GenerateWithFallback(ctx context.Context, params GenerateParams) (*Result, error) {
	return c.runFallback(func(cand ModelCandidate) (*GenerateResponse, error) {
		return c.Generate(ctx, cand.Name, buildRequest(cand, params))
	})
}

// runFallback drives the candidate loop. It applies no timeout, retry,
// or backoff of its own and never inspects the context between
// attempts: a canceled context fails each remaining attempt inside the
// transport rather than aborting the loop.
func (c *Client) runFallback(fn func(ModelCandidate) (*GenerateResponse, error)) (*Result, error) {
	attempts := make([]Attempt, 0, len(c.candidates))

	for _, cand := range c.candidates {
		resp, err := fn(cand)
		if err == nil {
			c.logger.Debug("model candidate succeeded",
				"model", cand.Name,
				"attempt", len(attempts)+1,
			)
			return &Result{Model: cand.Name, Response: resp}, nil
		}

		c.logger.Warn("model candidate failed",
			"model", cand.Name,
			"error", err,
		)
		attempts = append(attempts, Attempt{Model: cand.Name, Err: err})
	}

	return nil, &ExhaustedError{Attempts: attempts}
}

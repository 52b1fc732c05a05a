package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// rawJSONDirective is appended to the system instruction for candidates
// that do not honor response schemas.
const rawJSONDirective = "Respond with a single raw JSON value matching the requested structure. " +
	"Do not wrap it in markdown code fences and do not add any text before or after the JSON."

// GenerateParams describes one structured query before per-candidate
// shaping.
type GenerateParams struct {
	System      string  // System instruction
	Prompt      string  // User turn
	Schema      *Schema // Desired output shape, nil for free text
	Temperature float64
	Search      bool // Attach the search grounding tool
}

// buildRequest shapes params for a specific candidate. Candidates that
// honor structured output get the schema and JSON MIME type attached;
// the rest get a raw-JSON directive appended to the system instruction
// and no output constraint.
func buildRequest(cand ModelCandidate, p GenerateParams) *GenerateRequest {
	req := &GenerateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: p.Prompt}}},
		},
		GenerationConfig: &GenerationConfig{Temperature: p.Temperature},
	}

	system := p.System
	if p.Schema != nil {
		if cand.StructuredOutput {
			req.GenerationConfig.ResponseMIMEType = "application/json"
			req.GenerationConfig.ResponseSchema = p.Schema
		} else {
			if system != "" {
				system += "\n\n"
			}
			system += rawJSONDirective
		}
	}

	if system != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}
	if p.Search {
		req.Tools = []Tool{{GoogleSearch: &GoogleSearch{}}}
	}

	return req
}

// Generate performs a single generateContent call against one model.
// It is never retried; callers that want resilience go through
// GenerateWithFallback.
func (c *Client) Generate(ctx context.Context, modelName string, req *GenerateRequest) (*GenerateResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/models/"+modelName+":generateContent", nil, req)
	if err != nil {
		return nil, err
	}

	var resp GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	if resp.UsageMetadata != nil {
		c.logger.Debug("generate complete",
			"model", modelName,
			"finish_reason", resp.Candidates[0].FinishReason,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
		)
	}

	return &resp, nil
}

package genai

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListModels fetches a page of available models.
func (c *Client) ListModels(ctx context.Context, opts ListModelsOptions) (*ListModelsResponse, error) {
	query := url.Values{}

	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.PageToken != "" {
		query.Set("pageToken", opts.PageToken)
	}

	var resp ListModelsResponse
	if err := c.get(ctx, "/models", query, &resp); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	return &resp, nil
}

// ListAllModels fetches all available models by paginating through results.
func (c *Client) ListAllModels(ctx context.Context) ([]ModelInfo, error) {
	var allModels []ModelInfo
	opts := ListModelsOptions{PageSize: 50} // Max page size

	for {
		resp, err := c.ListModels(ctx, opts)
		if err != nil {
			return nil, err
		}

		allModels = append(allModels, resp.Models...)

		if resp.NextPageToken == "" {
			break
		}
		opts.PageToken = resp.NextPageToken
	}

	return allModels, nil
}

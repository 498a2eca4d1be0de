package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
)

// Parse parses one mhchem statement.
func (c *Client) Parse(ctx context.Context, text string) (*types.StatementView, error) {
	var out types.StatementView
	if err := c.post(ctx, "/parse", types.ParseRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Check grades test against target.
func (c *Client) Check(ctx context.Context, target, test string) (*types.CheckResultView, error) {
	var out types.CheckResultView
	if err := c.post(ctx, "/check", types.CheckRequest{Target: target, Test: test}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckAsync queues a check and returns the request ID that the
// check.completed event will carry.
func (c *Client) CheckAsync(ctx context.Context, req types.CheckRequest) (string, error) {
	var out struct {
		RequestID string `json:"request_id"`
	}
	if err := c.post(ctx, "/check/async", req, &out); err != nil {
		return "", err
	}
	return out.RequestID, nil
}

func (c *Client) CheckBatch(ctx context.Context, req types.BatchCheckRequest) (*types.BatchView, error) {
	if len(req.Items) == 0 {
		return nil, errors.InvalidParam("batch has no items")
	}
	var out types.BatchView
	if err := c.post(ctx, "/check/batch", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Balance returns the smallest integer coefficients for equation.
func (c *Client) Balance(ctx context.Context, equation string) (*types.BalanceView, error) {
	var out types.BalanceView
	if err := c.post(ctx, "/balance", types.BalanceRequest{Equation: equation}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submissions lists stored checks, newest first. A limit of zero uses the
// server default.
func (c *Client) Submissions(ctx context.Context, limit int) ([]types.SubmissionView, error) {
	path := "/submissions"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []types.SubmissionView
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Submission(ctx context.Context, id string) (*types.SubmissionView, error) {
	if id == "" {
		return nil, errors.InvalidParam("submission id is required")
	}
	var out types.SubmissionView
	if err := c.get(ctx, "/submissions/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*types.SubmissionStats, error) {
	var out types.SubmissionStats
	if err := c.get(ctx, "/submissions/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

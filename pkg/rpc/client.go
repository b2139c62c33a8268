package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

// Client is a typed client for the ProjectBudgets service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to a ProjectBudgets server. Callers supply
// transport options (credentials, dialers); the codec is forced on
// every call so no generated code is needed on this side either.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.ForceCodec(codec{})))
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %q: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// RecordSpending reports spend for a project and returns whether the
// project now exceeds its budget.
func (c *Client) RecordSpending(ctx context.Context, configName string, projectID uint64, spent float64) (bool, error) {
	req := &RecordSpendingRequest{ConfigName: configName, ProjectID: projectID, Spent: spent}
	reply := new(ExceedsBudgetReply)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/RecordSpending", req, reply); err != nil {
		return false, err
	}
	return reply.ExceedsBudget, nil
}

// ExceedsBudget reports whether a project currently exceeds its budget.
func (c *Client) ExceedsBudget(ctx context.Context, configName string, projectID uint64) (bool, error) {
	req := &ExceedsBudgetRequest{ConfigName: configName, ProjectID: projectID}
	reply := new(ExceedsBudgetReply)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/ExceedsBudget", req, reply); err != nil {
		return false, err
	}
	return reply.ExceedsBudget, nil
}

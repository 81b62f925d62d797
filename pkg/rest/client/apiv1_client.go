// Package client provides a basic REST client for tempbucket
package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tempbucket/tempbucket/pkg/rest/model"
)

// Client accesses the tempbucket REST API v1
type Client struct {
	restClient
}

// New creates a new v1 REST API client given the base URL of a tempbucket server, ex:
// "http://localhost:9000"
func New(baseURL string, opts ...func(*ClientOptions)) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	options := getDefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	c := &Client{
		restClient{
			client: &http.Client{
				Transport: options.transport,
				Timeout:   options.timeout,
			},
			baseURL: parsedURL,
		},
	}
	return c, nil
}

// GenerateAddress asks the server for a new address. An empty kind selects the server default.
func (c *Client) GenerateAddress(ctx context.Context, kind string) (string, error) {
	var resp model.AddressV1
	err := c.doJSON(ctx, "POST", "/api/v1/address", &model.AddressRequestV1{Kind: kind}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Address, nil
}

// ListMessages returns the message summaries held by address.
func (c *Client) ListMessages(ctx context.Context, address string) ([]map[string]interface{}, error) {
	var resp model.MessagesV1
	err := c.doJSON(ctx, "POST", "/api/v1/messages", &model.MessagesRequestV1{Address: address}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// GetMessage returns the normalized message given an address and message ID.
func (c *Client) GetMessage(ctx context.Context, address, id string) (*model.MessageV1, error) {
	var message model.MessageV1
	req := &model.MessageRequestV1{Address: address, MessageID: id}
	if err := c.doJSON(ctx, "POST", "/api/v1/message", req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Status returns the server's status report.
func (c *Client) Status(ctx context.Context) (*model.StatusV1, error) {
	var status model.StatusV1
	if err := c.doJSON(ctx, "GET", "/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

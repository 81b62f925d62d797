package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tempbucket/tempbucket/pkg/rest/model"
)

// httpClient allows http.Client to be mocked for tests
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Generic REST restClient
type restClient struct {
	client  httpClient
	baseURL *url.URL
}

// Error is returned when the server answers with a non-200 status.
type Error struct {
	StatusCode int    // HTTP status of the response.
	Kind       string // Failure kind reported by the server, ex: UpstreamUnavailable.
	Upstream   int    // Upstream status, when the server reported one.
	Message    string
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("unexpected HTTP status %v: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (HTTP %v): %s", e.Kind, e.StatusCode, e.Message)
}

// do performs an HTTP request with this client and returns the response.
func (c *restClient) do(ctx context.Context, method, uri string, body []byte) (*http.Response, error) {
	url := c.baseURL.JoinPath(uri)
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %v", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.client.Do(req)
}

// doJSON encodes in as the request body (when non-nil), performs an HTTP request with this client
// and unmarshalls the JSON response into out.
func (c *restClient) doJSON(
	ctx context.Context, method string, uri string, in interface{}, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s for %q: %v", method, uri, err)
		}
	}
	resp, err := c.do(ctx, method, uri, body)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusOK {
		if out == nil {
			return nil
		}
		// Decode response body
		return json.NewDecoder(resp.Body).Decode(out)
	}

	return decodeError(resp)
}

// decodeError builds an Error from a failed response, using the server's error body when present.
func decodeError(resp *http.Response) error {
	e := &Error{StatusCode: resp.StatusCode, Message: resp.Status}
	var body model.ErrorV1
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		e.Kind = body.Error
		e.Upstream = body.Status
		e.Message = body.Message
	}
	return e
}

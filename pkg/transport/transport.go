// Package transport issues outbound HTTP requests to the upstream mail site on behalf of a single
// session. It knows nothing about the upstream's endpoints or payloads.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps how much of an upstream response body is read.
const maxBodyBytes = 8 << 20

// ErrBodyTooLarge is returned when a response body exceeds maxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// Response is a fully read upstream response.
type Response struct {
	Status  int
	Header  http.Header
	Body    string
	Cookies map[string]string // Session cookies for the final URL, name to raw value.
}

// OK reports whether Status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport is the outbound request surface used by the session and facade layers.
type Transport interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
	Post(ctx context.Context, url string, headers map[string]string, body interface{}) (*Response, error)
}

// Factory creates a Transport with fresh session state.
type Factory func() (Transport, error)

// httpClient allows http.Client to be mocked for tests.
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get implements Transport.
func (t *HTTPTransport) Get(
	ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodGet, url, headers, nil)
}

// Post implements Transport, body is encoded as JSON.
func (t *HTTPTransport) Post(
	ctx context.Context, url string, headers map[string]string, body interface{}) (*Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding body for %q: %w", url, err)
	}
	return t.do(ctx, http.MethodPost, url, headers, b)
}

// do performs an HTTP request and reads the whole response.
func (t *HTTPTransport) do(
	ctx context.Context, method, url string, headers map[string]string, body []byte) (*Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %w", method, url, err)
	}
	for name, value := range t.headers(headers) {
		req.Header.Set(name, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %w", method, url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s for %q, reading body: %w", method, url, err)
	}
	t.logger.Debug().Str("method", method).Str("url", url).Int("status", resp.StatusCode).
		Int("bytes", len(data)).Msg("Upstream response")
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%s for %q: %w, limit is %d bytes", method, url, ErrBodyTooLarge,
			maxBodyBytes)
	}

	return &Response{
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Body:    string(data),
		Cookies: t.cookies(resp),
	}, nil
}

// cookies returns what the jar holds for the final request URL, which includes cookies set on
// redirect responses, overlaid with the cookies set by resp itself.
func (t *HTTPTransport) cookies(resp *http.Response) map[string]string {
	cookies := make(map[string]string)
	if t.jar != nil && resp.Request != nil && resp.Request.URL != nil {
		for _, c := range t.jar.Cookies(resp.Request.URL) {
			cookies[c.Name] = c.Value
		}
	}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	return cookies
}

// headers layers the static fingerprint, a user agent from the pool, then the per-call headers.
func (t *HTTPTransport) headers(call map[string]string) map[string]string {
	h := make(map[string]string, len(t.fp.StaticHeaders)+len(call)+1)
	for name, value := range t.fp.StaticHeaders {
		h[name] = value
	}
	if ua := PickUserAgent(t.fp.UserAgentPool, t.rnd); ua != "" {
		h["User-Agent"] = ua
	}
	for name, value := range call {
		h[name] = value
	}
	return h
}

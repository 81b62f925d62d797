package test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tempbucket/tempbucket/pkg/transport"
)

// Call records one request made through a TransportStub.
type Call struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string // JSON encoded POST body.
}

// Reply is a scripted TransportStub result.
type Reply struct {
	Response *transport.Response
	Err      error
}

// TransportStub is a scripted transport.Transport. Replies are consumed in order, the last one
// repeats once the script runs out.
type TransportStub struct {
	sync.Mutex
	Calls   []Call
	replies []Reply
}

// NewTransport creates a TransportStub that answers with replies.
func NewTransport(replies ...Reply) *TransportStub {
	return &TransportStub{replies: replies}
}

// Get implements transport.Transport.
func (t *TransportStub) Get(
	ctx context.Context, url string, headers map[string]string) (*transport.Response, error) {
	return t.record(ctx, Call{Method: "GET", URL: url, Headers: headers})
}

// Post implements transport.Transport.
func (t *TransportStub) Post(
	ctx context.Context, url string, headers map[string]string, body interface{},
) (*transport.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return t.record(ctx, Call{Method: "POST", URL: url, Headers: headers, Body: string(b)})
}

func (t *TransportStub) record(ctx context.Context, c Call) (*transport.Response, error) {
	t.Lock()
	defer t.Unlock()
	t.Calls = append(t.Calls, c)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(t.replies) == 0 {
		return &transport.Response{Status: 200, Cookies: map[string]string{}}, nil
	}
	r := t.replies[0]
	if len(t.replies) > 1 {
		t.replies = t.replies[1:]
	}
	return r.Response, r.Err
}

// LastCall returns the most recent call, or nil.
func (t *TransportStub) LastCall() *Call {
	t.Lock()
	defer t.Unlock()
	if len(t.Calls) == 0 {
		return nil
	}
	return &t.Calls[len(t.Calls)-1]
}

// Factory returns a transport.Factory handing out transports in order, the last one repeats. It
// also reports how many transports were created.
func Factory(transports ...transport.Transport) (transport.Factory, func() int) {
	var mu sync.Mutex
	created := 0
	f := func() (transport.Transport, error) {
		mu.Lock()
		defer mu.Unlock()
		i := created
		if i >= len(transports) {
			i = len(transports) - 1
		}
		created++
		return transports[i], nil
	}
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return created
	}
	return f, count
}

// TokenReply is a successful handshake reply setting the XSRF-TOKEN cookie to raw.
func TokenReply(raw string) Reply {
	return Reply{Response: &transport.Response{
		Status:  200,
		Body:    "<html></html>",
		Cookies: map[string]string{"XSRF-TOKEN": raw},
	}}
}

// StatusReply is a reply with the given status and body and no cookies.
func StatusReply(status int, body string) Reply {
	return Reply{Response: &transport.Response{
		Status:  status,
		Body:    body,
		Cookies: map[string]string{},
	}}
}

// InstantTimer is a retry.Timer that fires immediately, recording the requested waits.
type InstantTimer struct {
	c     chan time.Time
	Waits []time.Duration
}

// NewInstantTimer creates an InstantTimer.
func NewInstantTimer() *InstantTimer {
	return &InstantTimer{c: make(chan time.Time, 1)}
}

// Start records d and fires.
func (t *InstantTimer) Start(d time.Duration) {
	t.Waits = append(t.Waits, d)
	t.c <- time.Time{}
}

// Stop does nothing.
func (t *InstantTimer) Stop() {}

// C returns the firing channel.
func (t *InstantTimer) C() <-chan time.Time {
	return t.c
}

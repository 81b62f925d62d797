package rest

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tempbucket/tempbucket/pkg/config"
	"github.com/tempbucket/tempbucket/pkg/policy"
	"github.com/tempbucket/tempbucket/pkg/server/web"
	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// mailerStub records calls and answers with canned results.
type mailerStub struct {
	address  tempmail.EmailAddress
	messages []tempmail.MessageSummary
	detail   *tempmail.MessageDetail
	err      error

	kinds []string
	calls int
}

func (m *mailerStub) GenerateAddress(ctx context.Context, kind string) (tempmail.EmailAddress, error) {
	m.calls++
	m.kinds = append(m.kinds, kind)
	return m.address, m.err
}

func (m *mailerStub) ListMessages(
	ctx context.Context, address tempmail.EmailAddress) ([]tempmail.MessageSummary, error) {
	m.calls++
	return m.messages, m.err
}

func (m *mailerStub) FetchMessageDetail(
	ctx context.Context, address tempmail.EmailAddress, id string) (*tempmail.MessageDetail, error) {
	m.calls++
	return m.detail, m.err
}

var routesOnce sync.Once

func setupWebServer(svc web.Mailer) {
	cfg := &config.Root{
		Web: config.Web{ExposeVars: false},
		Upstream: config.Upstream{
			BaseURL: "https://upstream.example",
		},
		Retry: config.Retry{Attempts: 5},
	}
	routesOnce.Do(func() {
		SetupRoutes(web.Router.PathPrefix("/api/").Subrouter())
		SetupStatusRoute(web.Router, "/status")
	})
	web.Initialize(cfg, make(chan bool), svc, &policy.Addressing{})
}

func testRestGet(url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", url, nil)
	req.Header.Add("Accept", "application/json")
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)
	return w
}

func testRestPost(url string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", url, strings.NewReader(body))
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) interface{} {
	t.Helper()
	var result interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	return result
}

func decodedNumberEquals(t *testing.T, json interface{}, path string, want float64) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	got, ok := val.(float64)
	if ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T) %v (int64),\nwant: %v / %v",
		path, val, val, int64(got), want, int64(want))
}

func decodedStringEquals(t *testing.T, json interface{}, path string, want string) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(string); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

// getDecodedPath recursively navigates the specified path, returing the requested element.  If
// something goes wrong, the returned string will contain an explanation.
//
// Named path elements require the parent element to be a map[string]interface{}, numbers in square
// brackets require the parent element to be a []interface{}.
//
//     getDecodedPath(o, "users", "[1]", "name")
//
// is equivalent to the JavaScript:
//
//     o.users[1].name
//
func getDecodedPath(o interface{}, path ...string) (interface{}, string) {
	if len(path) == 0 {
		return o, ""
	}
	if o == nil {
		return nil, " is nil"
	}
	key := path[0]
	present := false
	var val interface{}
	if key[0] == '[' {
		// Expecting slice.
		index, err := strconv.Atoi(strings.Trim(key, "[]"))
		if err != nil {
			return nil, "/" + key + " is not a slice index"
		}
		oslice, ok := o.([]interface{})
		if !ok {
			return nil, " is not a slice"
		}
		if index >= len(oslice) {
			return nil, "/" + key + " is out of bounds"
		}
		val, present = oslice[index], true
	} else {
		// Expecting map.
		omap, ok := o.(map[string]interface{})
		if !ok {
			return nil, " is not a map"
		}
		val, present = omap[key]
	}
	if !present {
		return nil, "/" + key + " is missing"
	}
	result, msg := getDecodedPath(val, path[1:]...)
	if msg != "" {
		return nil, "/" + key + msg
	}
	return result, ""
}

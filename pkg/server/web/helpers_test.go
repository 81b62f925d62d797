package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePathPrefixer(t *testing.T) {
	testCases := []struct {
		base, path, want string
	}{
		{"", "", ""},
		{"", "/", "/"},
		{"", "/api", "/api"},
		{"/", "/api", "/api"},
		{"tb", "/api", "/tb/api"},
		{"/tb/", "/api", "/tb/api"},
		{"/a/b", "/api", "/a/b/api"},
	}
	for _, tc := range testCases {
		t.Run(tc.base+tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, MakePathPrefixer(tc.base)(tc.path))
		})
	}
}

func TestRenderJSONStatus(t *testing.T) {
	w := httptest.NewRecorder()
	err := RenderJSONStatus(w, http.StatusTeapot, map[string]string{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"k":"v"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Kind string `json:"kind"`
	}
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", want: "keep"},
		{name: "value", input: `{"kind":"dotGmail"}`, want: "dotGmail"},
		{name: "unknown field", input: `{"kind":"x","extra":1}`, wantErr: true},
		{name: "garbage", input: `{kind`, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tc.input))
			b := body{Kind: "keep"}
			err := DecodeJSON(req, &b)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, b.Kind)
		})
	}
}

func TestRequestLoggingWrapperAssignsID(t *testing.T) {
	var seen string
	h := requestLoggingWrapper(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen = w.Header().Get(RequestIDHeader)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	h.ServeHTTP(w, req)
	assert.Equal(t, "caller-id", w.Header().Get(RequestIDHeader))
}

package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxRequestBytes caps JSON request bodies.
const maxRequestBytes = 64 << 10

// RenderJSON sets the correct HTTP headers for JSON, then writes the specified data (typically a
// struct) encoded in JSON.
func RenderJSON(w http.ResponseWriter, data interface{}) error {
	return RenderJSONStatus(w, http.StatusOK, data)
}

// RenderJSONStatus is RenderJSON with an explicit status code.
func RenderJSONStatus(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Expires", "-1")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	return enc.Encode(data)
}

// DecodeJSON decodes a JSON request body into v. An empty body leaves v untouched.
func DecodeJSON(req *http.Request, v interface{}) error {
	if req.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(req.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// MakePathPrefixer returns a function that prepends basePath to a path. basePath is normalized
// to start with, and not end with, a slash.
func MakePathPrefixer(basePath string) func(string) string {
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return func(path string) string {
			return path
		}
	}
	basePath = "/" + basePath
	return func(path string) string {
		return basePath + path
	}
}

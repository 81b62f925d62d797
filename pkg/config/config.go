// Package config loads tempbucket configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	prefix      = "tempbucket"
	tableFormat = `tempbucket is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`

	defaultUserAgents = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36|" +
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 " +
		"(KHTML, like Gecko) Version/17.4 Safari/605.1.15|" +
		"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"
	defaultHeaders = "Accept: application/json, text/plain, */*|" +
		"Accept-Language: en-US,en;q=0.9|" +
		"X-Requested-With: XMLHttpRequest"
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root wraps all other configurations.
type Root struct {
	LogLevel string `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Web      Web
	Upstream Upstream
	Retry    Retry
}

// Web contains the HTTP server configuration.
type Web struct {
	Addr         string        `required:"true" default:"0.0.0.0:9000" desc:"Web server IP4 host:port"`
	BasePath     string        `default:"" desc:"Base path prefix for URLs"`
	ReadTimeout  time.Duration `required:"true" default:"30s" desc:"Request read timeout"`
	WriteTimeout time.Duration `required:"true" default:"120s" desc:"Response write timeout"`
	ExposeVars   bool          `required:"true" default:"true" desc:"Serve expvar at /debug/vars?"`
}

// Upstream describes the temporary-email site being fronted.
type Upstream struct {
	BaseURL       string        `required:"true" default:"https://www.emailnator.com" desc:"Upstream site URL"`
	HandshakePath string        `required:"true" default:"/" desc:"Page that sets the token cookie"`
	GeneratePath  string        `required:"true" default:"/generate-email" desc:"Address generation path"`
	ListPath      string        `required:"true" default:"/message-list" desc:"Message listing path"`
	MessagePath   string        `required:"true" default:"/message-list" desc:"Message detail path"`
	TokenCookie   string        `required:"true" default:"XSRF-TOKEN" desc:"Anti-forgery cookie name"`
	TokenHeader   string        `required:"true" default:"X-XSRF-TOKEN" desc:"Anti-forgery header name"`
	Origin        string        `default:"https://www.emailnator.com" desc:"Origin header value"`
	Referer       string        `default:"https://www.emailnator.com/" desc:"Referer header value"`
	Timeout       time.Duration `required:"true" default:"30s" desc:"Per request timeout"`
	UserAgents    PipeList      `default:"" desc:"User agents to rotate, | separated"`
	Headers       HeaderMap     `default:"" desc:"Static request headers, Name: value|Name: value"`
	Kinds         []string      `default:"domain,plusGmail,dotGmail,googleMail" desc:"Accepted address kinds"`
}

// Retry contains the handshake retry policy.
type Retry struct {
	Attempts        int           `required:"true" default:"5" desc:"Handshake attempts"`
	InitialInterval time.Duration `required:"true" default:"4s" desc:"First wait between attempts"`
	MaxInterval     time.Duration `required:"true" default:"10s" desc:"Longest wait between attempts"`
}

// URL joins path onto the upstream base URL.
func (u Upstream) URL(path string) string {
	return strings.TrimSuffix(u.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// PipeList is a list decoded from a | separated string, for values that contain commas.
type PipeList []string

// Decode implements envconfig.Decoder.
func (p *PipeList) Decode(value string) error {
	list := make(PipeList, 0)
	for _, v := range strings.Split(value, "|") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	*p = list
	return nil
}

// HeaderMap is a set of headers decoded from "Name: value|Name: value".
type HeaderMap map[string]string

// Decode implements envconfig.Decoder.
func (h *HeaderMap) Decode(value string) error {
	m := make(HeaderMap)
	for _, pair := range strings.Split(value, "|") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, val, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid header %q, want Name: value", pair)
		}
		m[name] = strings.TrimSpace(val)
	}
	*h = m
	return nil
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, err
	}
	// envconfig skips a Decoder for an unset variable with an empty default.
	if len(c.Upstream.UserAgents) == 0 {
		_ = c.Upstream.UserAgents.Decode(defaultUserAgents)
	}
	if len(c.Upstream.Headers) == 0 {
		if err := c.Upstream.Headers.Decode(defaultHeaders); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		log.Fatalf("Unable to parse env config: %v", err)
	}
	tabs.Flush()
}

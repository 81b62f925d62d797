package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jhillyerd/goldiff"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/suite"

	"github.com/tempbucket/tempbucket/pkg/config"
	"github.com/tempbucket/tempbucket/pkg/rest/client"
	"github.com/tempbucket/tempbucket/pkg/rest/model"
	"github.com/tempbucket/tempbucket/pkg/server"
)

const (
	upstreamToken   = "eyJpdiI6IjEyMyJ9=="
	upstreamAddress = "first.last@gmail.com"
)

type IntegrationSuite struct {
	suite.Suite
	upstream   *fakeUpstream
	restURL    string
	stopServer func()
}

func (s *IntegrationSuite) SetupSuite() {
	s.upstream = newFakeUpstream()
	restURL, stopServer, err := startServer(s.upstream.URL)
	s.Require().NoError(err)
	s.restURL = restURL
	s.stopServer = stopServer
}

func (s *IntegrationSuite) TearDownSuite() {
	s.stopServer()
	s.upstream.Close()
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) TestGenerateListShow() {
	ctx := context.Background()
	c, err := client.New(s.restURL)
	s.Require().NoError(err)

	// Generate an address.
	address, err := c.GenerateAddress(ctx, "dotGmail")
	s.Require().NoError(err)
	s.Equal(upstreamAddress, address)

	// List its messages.
	messages, err := c.ListMessages(ctx, address)
	s.Require().NoError(err)
	s.Require().Len(messages, 2)
	s.Equal("ADSVPN", messages[0]["messageID"])

	// Fetch the first one.
	msg, err := c.GetMessage(ctx, address, "ADSVPN")
	s.Require().NoError(err)
	s.Equal(string(readTestData("message.html")), msg.RawPayload)

	// Compare to golden.
	got := formatMessage(msg)
	goldiff.File(s.T(), got, "testdata", "message.golden")
}

func (s *IntegrationSuite) TestHandshakeRetried() {
	s.upstream.failHandshakes.Store(2)
	c, err := client.New(s.restURL)
	s.Require().NoError(err)

	address, err := c.GenerateAddress(context.Background(), "")
	s.Require().NoError(err)
	s.Equal(upstreamAddress, address)
	s.Equal(int64(0), s.upstream.failHandshakes.Load())
}

func (s *IntegrationSuite) TestHandshakeExhausted() {
	s.upstream.failHandshakes.Store(100)
	defer s.upstream.failHandshakes.Store(0)
	c, err := client.New(s.restURL)
	s.Require().NoError(err)

	_, err = c.GenerateAddress(context.Background(), "")
	var apiErr *client.Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusServiceUnavailable, apiErr.StatusCode)
	s.Equal("UpstreamUnavailable", apiErr.Kind)
}

func (s *IntegrationSuite) TestEmptyMessage() {
	c, err := client.New(s.restURL)
	s.Require().NoError(err)

	_, err = c.GetMessage(context.Background(), upstreamAddress, "EMPTY")
	var apiErr *client.Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusNotFound, apiErr.StatusCode)
	s.Equal("NoContent", apiErr.Kind)
}

func (s *IntegrationSuite) TestInvalidAddress() {
	c, err := client.New(s.restURL)
	s.Require().NoError(err)

	_, err = c.ListMessages(context.Background(), "not-an-address")
	var apiErr *client.Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)
}

func formatMessage(m *model.MessageV1) []byte {
	b := &bytes.Buffer{}
	fmt.Fprintf(b, "ID: %v\n", m.ID)
	fmt.Fprintf(b, "From: %v\n", m.Sender)
	fmt.Fprintf(b, "Subject: %v\n", m.Subject)
	fmt.Fprintf(b, "Time: %v\n", m.Timestamp)
	fmt.Fprintf(b, "\nTEXT:\n%v\n", m.CleanedText)
	return b.Bytes()
}

// fakeUpstream imitates the temporary-email site: the root page sets the anti-forgery cookie,
// and the API paths require both the cookie and the echoed header.
type fakeUpstream struct {
	*httptest.Server
	failHandshakes atomic.Int64
}

func newFakeUpstream() *fakeUpstream {
	f := &fakeUpstream{}
	router := mux.NewRouter()
	router.HandleFunc("/", f.handshake).Methods("GET")
	router.Handle("/generate-email", f.authorized(f.generate)).Methods("POST")
	router.Handle("/message-list", f.authorized(f.messageList)).Methods("POST")
	f.Server = httptest.NewServer(router)
	return f
}

func (f *fakeUpstream) handshake(w http.ResponseWriter, req *http.Request) {
	if f.failHandshakes.Load() > 0 {
		f.failHandshakes.Add(-1)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	// Value is percent-encoded the way the site sends it.
	w.Header().Add("Set-Cookie", "XSRF-TOKEN=eyJpdiI6IjEyMyJ9%3D%3D; Path=/")
	w.Header().Add("Set-Cookie", "session=s3ss10n; Path=/; HttpOnly")
	_, _ = io.WriteString(w, "<html><body>home</body></html>")
}

func (f *fakeUpstream) authorized(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		c, err := req.Cookie("session")
		if err != nil || c.Value != "s3ss10n" || req.Header.Get("X-XSRF-TOKEN") != upstreamToken {
			w.WriteHeader(419)
			return
		}
		next(w, req)
	})
}

func (f *fakeUpstream) generate(w http.ResponseWriter, req *http.Request) {
	_, _ = io.WriteString(w, `{"email":["`+upstreamAddress+`"]}`)
}

func (f *fakeUpstream) messageList(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Email     string `json:"email"`
		MessageID string `json:"messageID"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	switch body.MessageID {
	case "":
		_, _ = io.WriteString(w, `{"messageData":[`+
			`{"messageID":"ADSVPN","from":"AI TOOLS","subject":"Welcome","time":"Just Now"},`+
			`{"messageID":"MTkw","from":"Someone","subject":"Hi","time":"1 minute ago"}]}`)
	case "EMPTY":
		_, _ = io.WriteString(w, "  \n")
	default:
		_, _ = w.Write(readTestData("message.html"))
	}
}

func startServer(upstreamURL string) (restURL string, stop func(), err error) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	addr, err := freeAddr()
	if err != nil {
		return "", nil, err
	}
	clearEnv()
	os.Setenv("TEMPBUCKET_WEB_ADDR", addr)
	os.Setenv("TEMPBUCKET_UPSTREAM_BASEURL", upstreamURL)
	os.Setenv("TEMPBUCKET_RETRY_INITIALINTERVAL", "5ms")
	os.Setenv("TEMPBUCKET_RETRY_MAXINTERVAL", "10ms")
	conf, err := config.Process()
	if err != nil {
		return "", nil, err
	}

	svcCtx, svcCancel := context.WithCancel(context.Background())
	services, err := server.Prod(svcCtx, make(chan bool), conf)
	if err != nil {
		svcCancel()
		return "", nil, err
	}
	restURL = "http://" + addr
	stop = func() {
		svcCancel()
		services.Wait()
	}
	if err := waitReady(restURL); err != nil {
		stop()
		return "", nil, err
	}
	return restURL, stop, nil
}

// waitReady polls the status endpoint until the server answers.
func waitReady(restURL string) error {
	c, err := client.New(restURL)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := c.Status(context.Background())
		if err == nil || time.Now().After(deadline) {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// freeAddr returns a loopback address with a port that was free a moment ago.
func freeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	addr := l.Addr().String()
	return addr, l.Close()
}

func readTestData(path ...string) []byte {
	// Prefix path with testdata.
	p := append([]string{"testdata"}, path...)
	f, err := os.Open(filepath.Join(p...))
	if err != nil {
		panic(err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		panic(err)
	}
	return data
}

// clearEnv clears environment variables, preserving any that are critical for this OS.
func clearEnv() {
	preserve := make(map[string]string)
	backup := func(k string) {
		preserve[k] = os.Getenv(k)
	}

	// Backup critical env variables.
	if runtime.GOOS == "windows" {
		backup("SYSTEMROOT")
	}

	os.Clearenv()

	for k, v := range preserve {
		os.Setenv(k, v)
	}
}

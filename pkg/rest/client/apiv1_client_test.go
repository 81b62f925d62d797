package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientV1GenerateAddress(t *testing.T) {
	c, err := New(baseURLStr)
	require.NoError(t, err)
	mth := &mockHTTPClient{body: `{"address":"first.last@gmail.com"}`}
	c.client = mth

	// Method under test
	got, err := c.GenerateAddress(context.Background(), "dotGmail")
	require.NoError(t, err)

	assert.Equal(t, "first.last@gmail.com", got)
	assert.Equal(t, "POST", mth.req.Method)
	assert.Equal(t, baseURLStr+"/api/v1/address", mth.req.URL.String())
	assert.JSONEq(t, `{"kind":"dotGmail"}`, string(mth.ReqBody()))
}

func TestClientV1GenerateAddressDefaultKind(t *testing.T) {
	c, err := New(baseURLStr)
	require.NoError(t, err)
	mth := &mockHTTPClient{body: `{"address":"a@gmail.com"}`}
	c.client = mth

	_, err = c.GenerateAddress(context.Background(), "")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(mth.ReqBody()))
}

func TestClientV1ListMessages(t *testing.T) {
	c, err := New(baseURLPathStr)
	require.NoError(t, err)
	mth := &mockHTTPClient{
		body: `{"address":"a@gmail.com","messages":[{"messageID":"ADSVPN","subject":"Welcome"}]}`,
	}
	c.client = mth

	// Method under test
	got, err := c.ListMessages(context.Background(), "a@gmail.com")
	require.NoError(t, err)

	assert.Equal(t, "POST", mth.req.Method)
	assert.Equal(t, baseURLPathStr+"/api/v1/messages", mth.req.URL.String())
	assert.JSONEq(t, `{"address":"a@gmail.com"}`, string(mth.ReqBody()))
	require.Len(t, got, 1)
	assert.Equal(t, "ADSVPN", got[0]["messageID"])
}

func TestClientV1GetMessage(t *testing.T) {
	c, err := New(baseURLStr)
	require.NoError(t, err)
	mth := &mockHTTPClient{
		body: `{"id":"ADSVPN","sender":"AI TOOLS","subject":"Welcome","timestamp":"Just Now",` +
			`"cleanedText":"Hello","rawPayload":"<p>Hello</p>"}`,
	}
	c.client = mth

	// Method under test
	got, err := c.GetMessage(context.Background(), "a@gmail.com", "ADSVPN")
	require.NoError(t, err)

	assert.Equal(t, "POST", mth.req.Method)
	assert.Equal(t, baseURLStr+"/api/v1/message", mth.req.URL.String())
	assert.JSONEq(t, `{"address":"a@gmail.com","messageId":"ADSVPN"}`, string(mth.ReqBody()))
	assert.Equal(t, "AI TOOLS", got.Sender)
	assert.Equal(t, "Hello", got.CleanedText)
	assert.Equal(t, "<p>Hello</p>", got.RawPayload)
}

func TestClientV1GetMessageNotFound(t *testing.T) {
	c, err := New(baseURLStr)
	require.NoError(t, err)
	c.client = &mockHTTPClient{
		statusCode: 404,
		body:       `{"error":"NoContent","message":"message: NoContent"}`,
	}

	got, err := c.GetMessage(context.Background(), "a@gmail.com", "gone")
	assert.Nil(t, got)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NoContent", apiErr.Kind)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestClientV1Status(t *testing.T) {
	c, err := New(baseURLStr)
	require.NoError(t, err)
	mth := &mockHTTPClient{body: `{"version":"1.0","retry":{"attempts":5}}`}
	c.client = mth

	got, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GET", mth.req.Method)
	assert.Equal(t, baseURLStr+"/status", mth.req.URL.String())
	assert.Equal(t, "1.0", got.Version)
	assert.Equal(t, 5, got.Retry.Attempts)
}

func TestClientOptions(t *testing.T) {
	c, err := New(baseURLStr, WithClientOptsTimeout(5*time.Second))
	require.NoError(t, err)
	hc, ok := c.client.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, hc.Timeout)

	c, err = New(baseURLStr)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, c.client.(*http.Client).Timeout)
}

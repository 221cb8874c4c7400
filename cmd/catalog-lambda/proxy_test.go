package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyHandlerForwardsRequest(t *testing.T) {
	var got *http.Request
	var gotBody string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	resp, err := proxyHandler(h)(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/api/products",
		QueryStringParameters: map[string]string{"search": "falcon", "type": "Quadcopter"},
		Headers:               map[string]string{"X-Request-Id": "req-1"},
		Body:                  base64.StdEncoding.EncodeToString([]byte("payload")),
		IsBase64Encoded:       true,
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/products", got.URL.Path)
	assert.Equal(t, "falcon", got.URL.Query().Get("search"))
	assert.Equal(t, "Quadcopter", got.URL.Query().Get("type"))
	assert.Equal(t, "req-1", got.Header.Get("X-Request-Id"))
	assert.Equal(t, "payload", gotBody)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"data":{}}`, resp.Body)
	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestProxyHandlerEncodesBinaryBodies(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0x00, 0x01})
	})

	resp, err := proxyHandler(h)(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x00, 0x01}), resp.Body)
}

func TestProxyHandlerRejectsBadBase64(t *testing.T) {
	called := false
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	resp, err := proxyHandler(h)(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodGet,
		Path:            "/",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

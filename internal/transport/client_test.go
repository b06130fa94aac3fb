package transport

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/wire"
)

func testNode(t *testing.T, srv *httptest.Server) wire.Node {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return wire.Node{ID: "n1", Host: u.Scheme + "://" + host, Port: port}
}

type echoBody struct {
	Value string `json:"value"`
}

func TestPostJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in echoBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echoBody{Value: in.Value + "-pong"})
	}))
	defer srv.Close()

	node := testNode(t, srv)
	client := NewClient(time.Second)

	var out echoBody
	result, err := client.PostJSON(context.Background(), node, node.URL(), echoBody{Value: "ping"}, &out)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, "ping-pong", out.Value)
	assert.GreaterOrEqual(t, result.Latency, time.Duration(0))
}

func TestPostJSONClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	node := testNode(t, srv)
	client := NewClient(time.Second)

	result, err := client.PostJSON(context.Background(), node, node.URL(), echoBody{}, nil)
	require.Error(t, err)
	assert.Equal(t, OutcomeClientError, result.Outcome)
	assert.Equal(t, http.StatusBadRequest, result.Status)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.True(t, strings.Contains(httpErr.Body, "bad request"))
}

func TestPostJSONServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	node := testNode(t, srv)
	client := NewClient(time.Second)

	result, err := client.PostJSON(context.Background(), node, node.URL(), echoBody{}, nil)
	require.Error(t, err)
	assert.Equal(t, OutcomeServerError, result.Outcome)
}

func TestPostJSONTransportError(t *testing.T) {
	node := wire.Node{ID: "n1", Host: "http://127.0.0.1", Port: 1}
	client := NewClient(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(2 * time.Millisecond)

	result, err := client.PostJSON(ctx, node, node.URL(), echoBody{}, nil)
	require.Error(t, err)
	assert.Equal(t, OutcomeTransportError, result.Outcome)

	var timeoutErr *frosterr.NodeTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, wire.NodeID("n1"), timeoutErr.Node)
}

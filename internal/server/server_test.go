package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facto-ocr/facto/internal/pipeline"
	"github.com/facto-ocr/facto/internal/testutil"
)

var sampleInvoice = testutil.MinimalInvoice()

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p, err := pipeline.NewBuilder().Build()
	require.NoError(t, err)
	s, err := NewServer(Config{CORSOrigin: "*"}, p)
	require.NoError(t, err)
	return s
}

func TestNewServerRequiresPipeline(t *testing.T) {
	_, err := NewServer(Config{}, nil)
	assert.Error(t, err)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
}

func TestExtractHandler(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, err := json.Marshal(ExtractRequest{Text: sampleInvoice})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/extract", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)
	require.NotNil(t, out.Document)
	assert.Len(t, out.Document.Lines, 1)
}

func TestExtractHandlerEmptyText(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/extract", "application/json",
		strings.NewReader(`{"text":""}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}

func TestExtractHandlerInvalidJSON(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/extract", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtractHandlerMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/extract")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/extract", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestBatchHandler(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, err := json.Marshal(BatchRequest{Texts: []string{sampleInvoice, "", sampleInvoice}})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/batch", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out BatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)
	require.Len(t, out.Items, 3)

	assert.NotNil(t, out.Items[0].Document)
	assert.Nil(t, out.Items[1].Document)
	assert.NotEmpty(t, out.Items[1].Error)
	assert.NotNil(t, out.Items[2].Document)
}

func TestBatchHandlerEmpty(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/batch", "application/json",
		strings.NewReader(`{"texts":[]}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchWebSocket(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/batch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteJSON(wsMessage{
		Type:  "batch",
		Texts: []string{sampleInvoice, sampleInvoice},
	}))

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var documents int
	var sawStart, sawComplete bool
	for !sawComplete {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case "start":
			sawStart = true
			assert.Equal(t, 2, msg.Total)
		case "document":
			documents++
			require.NotNil(t, msg.Document)
			assert.Len(t, msg.Document.Lines, 1)
		case "complete":
			sawComplete = true
		case "progress", "doc_error":
		default:
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}

	assert.True(t, sawStart)
	assert.Equal(t, 2, documents)
}

func TestBatchWebSocketEmptyTexts(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/batch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteJSON(wsMessage{Type: "batch"}))

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
}

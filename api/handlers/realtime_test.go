package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friend-ai/backend/internal/generator"
	"github.com/friend-ai/backend/internal/realtime"
)

func newStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := realtime.NewService(realtime.Config{
		Generator:      &generator.KeywordGenerator{},
		StreamInterval: 10 * time.Millisecond,
	})
	handler := NewRealtimeHandler(svc)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api"))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// readSSEFrame consumes one `data: <payload>` frame and its trailing blank
// line, returning the payload.
func readSSEFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "), "expected data frame, got %q", line)

	blank, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "\n", blank, "data frame must be terminated by a blank line")

	return strings.TrimSuffix(strings.TrimPrefix(line, "data: "), "\n")
}

func TestStreamWritesEventFrames(t *testing.T) {
	srv := newStreamServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sse/u1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	reader := bufio.NewReader(resp.Body)

	var connected realtime.StreamEvent
	require.NoError(t, json.Unmarshal([]byte(readSSEFrame(t, reader)), &connected))
	assert.Equal(t, "connected", connected.Type)
	assert.Equal(t, "u1", connected.UserID)

	var status realtime.StreamEvent
	require.NoError(t, json.Unmarshal([]byte(readSSEFrame(t, reader)), &status))
	assert.Equal(t, "status_update", status.Type)
	require.NotNil(t, status.Data)
	assert.Equal(t, "u1", status.Data.UserID)
	assert.Contains(t, status.Data.Message, "#1")
}

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noFlushWriter hides the recorder's Flush method
type noFlushWriter struct {
	http.ResponseWriter
}

func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()

	sse, err := NewSSEWriter(w)
	require.NoError(t, err)
	require.NoError(t, sse.WriteEvent("score", map[string]int{"afterScore": 72}))
	require.NoError(t, sse.WriteError("quota exceeded", http.StatusTooManyRequests))

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t,
		"id: 1\nevent: score\ndata: {\"afterScore\":72}\n\n"+
			"id: 2\nevent: error\ndata: {\"error\":\"quota exceeded\",\"status\":429}\n\n",
		w.Body.String())
	assert.True(t, w.Flushed)
}

func TestSSEWriter_Unsupported(t *testing.T) {
	_, err := NewSSEWriter(noFlushWriter{httptest.NewRecorder()})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestSSEWriter_UnencodableData(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)
	assert.Error(t, sse.WriteEvent("bad", make(chan int)))

	require.NoError(t, sse.WriteEvent("complete", true))
	assert.Equal(t, "id: 1\nevent: complete\ndata: true\n\n", w.Body.String())
}

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamingUnsupported is returned when the response cannot be flushed.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// errorEvent is the payload of the terminal "error" event.
type errorEvent struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// SSEWriter streams tailoring progress as server-sent events. Events are
// numbered from 1 so a client can tell whether it missed any.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter commits the event-stream headers and a 200 status. Nothing
// but events can be written to w afterwards.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx would otherwise hold events back
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends one event whose data is the JSON encoding of data. An
// event that cannot be encoded is not sent and does not consume an ID.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload)
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteError sends the terminal error event with the status the failure
// would have had as a plain response.
func (s *SSEWriter) WriteError(message string, status int) error {
	return s.WriteEvent("error", errorEvent{Error: message, Status: status})
}

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

func sendEvent(w http.ResponseWriter, flusher http.Flusher, name string, data any) bool {
	payload, err := json.Marshal(data)
	if err != nil {
		return false
	}
	if name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", name); err != nil {
			return false
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return false
	}
	flusher.Flush()
	return true
}

// handleQueueStream sends a queue snapshot on connect and then periodically.
func (s *Server) handleQueueStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	send := func() bool {
		return sendEvent(w, flusher, "", queueResponse{
			Items:  s.queue.Items(),
			Status: s.runs.Status(),
		})
	}
	if !send() {
		return
	}

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}

// handleEvents relays queue run events as they happen.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	events, unsubscribe := s.runs.Events().Subscribe(64)
	defer unsubscribe()

	// Headers go out before the first event so clients see the stream open.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			if !sendEvent(w, flusher, string(event.Type), event) {
				return
			}
		}
	}
}

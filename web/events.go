package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/robinvdvleuten/moneybook/document"
)

// EventMessage is the payload of a Server-Sent Event.
type EventMessage struct {
	Kind        string   `json:"kind"`
	Description string   `json:"description,omitempty"`
	Refs        []string `json:"refs,omitempty"`
}

// relay forwards a document notification to every SSE client.
func (s *Server) relay(e document.Event) {
	msg := EventMessage{Kind: e.Kind.String(), Description: e.Description}
	for _, ref := range e.Refs {
		msg.Refs = append(msg.Refs, ref.String())
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.broadcast(string(data))
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}

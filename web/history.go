package web

import (
	"net/http"

	"github.com/robinvdvleuten/moneybook/undo"
)

// HistoryResponse is the JSON response structure for the history endpoint.
type HistoryResponse struct {
	Actions []undo.Entry `json:"actions"`
	Undo    string       `json:"undo,omitempty"`
	Redo    string       `json:"redo,omitempty"`
	Dirty   bool         `json:"dirty"`
}

func (s *Server) history() *HistoryResponse {
	return &HistoryResponse{
		Actions: s.doc.History(),
		Undo:    s.doc.UndoDescription(),
		Redo:    s.doc.RedoDescription(),
		Dirty:   s.doc.IsDirty(),
	}
}

// handleGetHistory handles GET requests to /api/history.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSONResponse(w, s.history())
}

// handleUndo handles POST requests to /api/undo. The document is saved after
// a successful undo.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	ctx := s.requestContext(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.Undo(ctx); err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(ctx); err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, s.history())
}

// handleRedo handles POST requests to /api/redo. The document is saved after
// a successful redo.
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	ctx := s.requestContext(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.Redo(ctx); err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(ctx); err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, s.history())
}

// Package web serves a moneybook document over HTTP.
//
// The server exposes a JSON API for reading accounts and ledgers, undoing and
// redoing actions and following document notifications through Server-Sent
// Events. Changes made by undo and redo are written back to the file. When
// watching is enabled, the document is reloaded whenever the file changes on
// disk.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/moneybook/document"
	moneyerrors "github.com/robinvdvleuten/moneybook/errors"
	"github.com/robinvdvleuten/moneybook/telemetry"
)

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	ReadOnly     bool
	WatchEnabled bool
	Logger       *zap.Logger

	// Options configure the document on load.
	Options []document.Option

	mu   sync.Mutex
	doc  *document.Document
	path string
	// written is the modification time of our own last write, so the
	// watcher does not reload it.
	written time.Time

	collector telemetry.Collector

	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(port int, path string, opts ...document.Option) *Server {
	return NewWithVersion(port, path, "", "", opts...)
}

func NewWithVersion(port int, path, version, commitSHA string, opts ...document.Option) *Server {
	return &Server{
		Port:       port,
		Host:       "127.0.0.1",
		Version:    version,
		CommitSHA:  commitSHA,
		Logger:     zap.NewNop(),
		Options:    opts,
		path:       path,
		sseClients: make(map[chan string]struct{}),
	}
}

func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))

	if s.path == "" {
		timer.End()
		return fmt.Errorf("document file is required")
	}

	loadTimer := timer.Child("web.load " + filepath.Base(s.path))
	if err := s.load(ctx); err != nil {
		loadTimer.End()
		timer.End()
		return fmt.Errorf("failed to load document: %w", err)
	}
	loadTimer.End()

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			timer.End()
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	mux := s.setupRouter()
	timer.End()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", s.handleGetVersion)
	mux.HandleFunc("GET /api/accounts", s.handleGetAccounts)
	mux.HandleFunc("GET /api/ledger", s.handleGetLedger)
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("POST /api/undo", s.requireWritable(s.handleUndo))
	mux.HandleFunc("POST /api/redo", s.requireWritable(s.handleRedo))
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			http.Error(w, "Server is in read-only mode", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// requestContext carries the server's telemetry collector. Collectors are
// kept per server, request contexts do not inherit the Start context.
func (s *Server) requestContext(r *http.Request) context.Context {
	if s.collector == nil {
		return r.Context()
	}
	return telemetry.WithCollector(r.Context(), s.collector)
}

// load creates the document and loads the file into it. Every document
// notification is relayed to the SSE clients.
func (s *Server) load(ctx context.Context) error {
	s.collector = telemetry.NewLogCollector(s.Logger)

	opts := append([]document.Option{document.WithLogger(s.Logger)}, s.Options...)
	doc := document.New(ctx, opts...)
	doc.Subscribe(s.relay)
	if err := doc.LoadFromXML(ctx, s.path); err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// reload reads the file again into the existing document. A file that fails
// to load leaves the document as it was.
func (s *Server) reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, err := os.Stat(s.path); err == nil && info.ModTime().Equal(s.written) {
		return nil
	}
	return s.doc.LoadFromXML(ctx, s.path)
}

// persist writes the document back to its file. Caller must hold the mutex.
func (s *Server) persist(ctx context.Context) error {
	if err := s.doc.SaveToXML(ctx, s.path); err != nil {
		return err
	}
	if info, err := os.Stat(s.path); err == nil {
		s.written = info.ModTime()
	}
	return nil
}

// startWatcher starts watching the directory of the document, so atomic
// saves through a rename are noticed as well.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	go s.runWatcher(ctx, watcher)

	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Debounce timer - editors often write files in multiple steps
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := s.reload(ctx); err != nil {
					s.Logger.Warn("failed to reload document", zap.String("path", s.path), zap.Error(err))
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.Logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error moneyerrors.ErrorJSON `json:"error"`
}

// writeError answers with the JSON form of err and the status of its category.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(moneyerrors.StatusCode(err))
	_ = json.NewEncoder(w).Encode(&ErrorResponse{Error: moneyerrors.NewJSONFormatter().ToJSON(err)})
}

type VersionResponse struct {
	Version   string `json:"version"`
	CommitSHA string `json:"commitSha"`
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, &VersionResponse{Version: s.Version, CommitSHA: s.CommitSHA})
}

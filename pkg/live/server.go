package live

import (
	"bytes"
	_ "embed"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/render"
)

//go:embed client.js
var clientJS []byte

const tracerName = "github.com/vango-dev/elements/pkg/live"

// Server creates sessions for page requests and attaches WebSocket clients
// to them.
type Server struct {
	config   Config
	build    BuildFunc
	upgrader websocket.Upgrader
	tracer   trace.Tracer

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewServer creates a Server whose sessions are populated by build.
func NewServer(build BuildFunc, config Config) *Server {
	config = config.withDefaults()
	return &Server{
		config: config,
		build:  build,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		tracer:   otel.Tracer(tracerName),
		sessions: make(map[string]*Session),
	}
}

// Routes mounts the page, the WebSocket endpoint and the client script.
func (srv *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", srv.ServePage)
	r.Get("/live", srv.ServeWS)
	r.Get(srv.config.ScriptPath, srv.ServeScript)
	return r
}

// NewSession creates and builds a session.
func (srv *Server) NewSession() (*Session, error) {
	s := newSession(srv, uuid.NewString())
	if err := s.build(srv.build); err != nil {
		s.Close()
		return nil, err
	}
	srv.mu.Lock()
	srv.sessions[s.id] = s
	srv.mu.Unlock()
	srv.config.Observer.SessionOpened()
	srv.config.Logger.Debug("live: session opened", "session", s.id)
	return s, nil
}

// Session returns a session by ID.
func (srv *Server) Session(id string) (*Session, bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	s, ok := srv.sessions[id]
	return s, ok
}

// Count returns the number of open sessions.
func (srv *Server) Count() int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return len(srv.sessions)
}

// Close closes every session.
func (srv *Server) Close() {
	srv.mu.Lock()
	sessions := make([]*Session, 0, len(srv.sessions))
	for _, s := range srv.sessions {
		sessions = append(sessions, s)
	}
	srv.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (srv *Server) remove(s *Session) {
	srv.mu.Lock()
	_, ok := srv.sessions[s.id]
	delete(srv.sessions, s.id)
	srv.mu.Unlock()
	if ok {
		srv.config.Observer.SessionClosed()
	}
}

// ServePage renders a new session's document as a full page. The session
// waits for its client for Config.AttachTimeout.
func (srv *Server) ServePage(w http.ResponseWriter, r *http.Request) {
	s, err := srv.NewSession()
	if err != nil {
		srv.config.Logger.Error("live: build failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	var renderErr error
	err = s.Do(func(doc *dom.Document) {
		renderer := render.NewRenderer(render.RendererConfig{DeclarativeShadow: true, NodeIDs: true})
		renderErr = renderer.RenderPage(&buf, render.PageData{
			Document:   doc,
			Title:      srv.config.Title,
			SessionID:  s.id,
			LiveScript: srv.config.ScriptPath,
		})
	})
	if err == nil {
		err = renderErr
	}
	if err != nil {
		s.Close()
		srv.config.Logger.Error("live: page render failed", "session", s.id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	time.AfterFunc(srv.config.AttachTimeout, func() {
		if !s.Attached() {
			s.Close()
		}
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// ServeWS upgrades the request and attaches it to the session named by the
// "session" query parameter. Unknown or already attached sessions get a
// fresh session whose init message carries the body HTML.
func (srv *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.config.Logger.Warn("live: upgrade failed", "error", err)
		return
	}

	s, ok := srv.Session(r.URL.Query().Get("session"))
	full := !ok || s.Attached()
	if full {
		if s, err = srv.NewSession(); err != nil {
			srv.config.Logger.Error("live: build failed", "error", err)
			conn.Close()
			return
		}
	}
	if err := s.attach(conn, full); err != nil {
		s.logger.Warn("live: attach failed", "error", err)
		if err != ErrAlreadyAttached {
			s.Close()
		}
		conn.Close()
	}
}

// ServeScript serves the embedded client script.
func (srv *Server) ServeScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Write(clientJS)
}

package live

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/render"
	"github.com/vango-dev/elements/pkg/ssr"
)

// ErrSessionClosed is returned by Do after the session has closed.
var ErrSessionClosed = stderrors.New("live: session closed")

// ErrAlreadyAttached is returned when a second client attaches to a session.
var ErrAlreadyAttached = stderrors.New("live: session already attached")

// ErrQueueFull is returned by Do when the session's task queue is full.
var ErrQueueFull = stderrors.New("live: session queue full")

// BuildFunc populates a new session document. It runs on the session's
// loop goroutine.
type BuildFunc func(doc *dom.Document) error

// Session is one live document and its client connection.
type Session struct {
	id     string
	server *Server
	config Config
	logger *slog.Logger
	tracer trace.Tracer

	// Loop-confined.
	doc *dom.Document
	seq uint64

	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex // guards conn writes
	conn     *websocket.Conn
	attached atomic.Bool
}

func newSession(srv *Server, id string) *Session {
	s := &Session{
		id:     id,
		server: srv,
		config: srv.config,
		logger: srv.config.Logger.With("session", id),
		tracer: srv.tracer,
		tasks:  make(chan func(), srv.config.MaxQueue),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Attached reports whether a client connection is attached.
func (s *Session) Attached() bool { return s.attached.Load() }

// build creates the session document on the loop goroutine.
func (s *Session) build(fn BuildFunc) error {
	var buildErr error
	err := s.Do(func(*dom.Document) {
		doc := dom.NewDocument(
			dom.WithContext(ssr.Client),
			dom.WithRegistry(s.config.Registry),
			dom.WithLogger(s.logger),
		)
		nids := render.NewRenderer(render.RendererConfig{DeclarativeShadow: true, NodeIDs: true})
		doc.SetSerializer(func(n *dom.Node) string {
			html, _ := nids.RenderToString(n)
			return html
		})
		s.doc = doc
		if fn != nil {
			buildErr = fn(doc)
		}
		doc.RecordMutations(true)
	})
	if err != nil {
		return err
	}
	return buildErr
}

// Do runs fn on the session's loop goroutine and waits for it. Mutations
// made by fn are sent to the client afterwards. Do must not be called from
// the loop goroutine itself.
func (s *Session) Do(fn func(doc *dom.Document)) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn(s.doc)
	}
	select {
	case <-s.done:
		return ErrSessionClosed
	case s.tasks <- task:
	default:
		return ErrQueueFull
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// post queues fn without waiting.
func (s *Session) post(fn func()) bool {
	select {
	case <-s.done:
		return false
	case s.tasks <- fn:
		return true
	default:
		return false
	}
}

func (s *Session) loop() {
	defer reactive.ReleaseContext()
	for {
		select {
		case fn := <-s.tasks:
			s.run(fn)
		case <-s.done:
			s.teardown()
			return
		}
	}
}

// run executes a task and ships the resulting mutations.
func (s *Session) run(fn func()) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("live: task panicked",
					"panic", r,
					"stack", string(debug.Stack()))
			}
		}()
		if err := reactive.Batch(fn); err != nil {
			s.logger.Error("live: flush failed", "error", err)
		}
	}()
	s.flush()
}

// flush sends the mutation log as one patches message. Without a client
// the log is dropped: the page or init HTML carries the state.
func (s *Session) flush() {
	if s.doc == nil {
		return
	}
	muts := s.doc.TakeMutations()
	if len(muts) == 0 || !s.attached.Load() {
		return
	}
	patches := PatchesFrom(muts)
	if len(patches) == 0 {
		return
	}
	s.seq++
	if err := s.write(ServerMessage{Type: TypePatches, Seq: s.seq, Patches: patches}); err != nil {
		s.logger.Warn("live: send patches failed", "error", err)
		s.Close()
		return
	}
	s.config.Observer.PatchesSent(len(patches))
}

func (s *Session) write(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteJSON(msg)
}

// attach binds conn to the session and starts its reader and pinger. When
// full is set the init message carries the body HTML.
func (s *Session) attach(conn *websocket.Conn, full bool) error {
	var writeErr error
	err := s.Do(func(doc *dom.Document) {
		if s.attached.Load() {
			writeErr = ErrAlreadyAttached
			return
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		doc.TakeMutations()
		init := ServerMessage{
			Type:     TypeInit,
			Session:  s.id,
			Body:     doc.Body().ID(),
			Document: doc.Node().ID(),
		}
		if full {
			var buf bytes.Buffer
			nids := render.NewRenderer(render.RendererConfig{DeclarativeShadow: true, NodeIDs: true})
			if err := nids.RenderChildren(&buf, doc.Body()); err != nil {
				s.logger.Error("live: render init failed", "error", err)
			}
			init.HTML = buf.String()
		}
		// Written from the loop so no patches can precede it.
		if writeErr = s.write(init); writeErr == nil {
			s.attached.Store(true)
		}
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	go s.readLoop(conn)
	go s.pingLoop(conn)
	return nil
}

func (s *Session) readLoop(conn *websocket.Conn) {
	defer s.Close()

	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("live: read error", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		msg, target, err := DecodeClientMessage(data)
		if err != nil {
			s.config.Observer.ProtocolError()
			s.logger.Warn("live: bad message", "error", err)
			s.write(ServerMessage{Type: TypeError, Code: errors.Code(err), Message: err.Error()})
			continue
		}
		if !s.post(func() { s.handle(msg, target) }) {
			s.logger.Warn("live: dropped message", "type", msg.Type)
		}
	}
}

func (s *Session) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// handle applies a client message. It runs on the loop goroutine inside a
// reactive batch.
func (s *Session) handle(msg *ClientMessage, target uint64) {
	start := time.Now()
	_, span := s.tracer.Start(context.Background(), "live."+msg.Type,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("live.session", s.id),
			attribute.Int64("live.target", int64(target)),
			attribute.String("live.event", msg.Event),
		),
	)
	defer span.End()

	node := s.doc.NodeByID(target)
	if node == nil {
		span.SetStatus(codes.Error, "unknown target")
		s.logger.Debug("live: unknown target", "target", target)
		return
	}

	switch msg.Type {
	case TypeEvent:
		if msg.Value != nil && node.Type == dom.ElementNode {
			node.SetAttribute("value", *msg.Value)
		}
		node.DispatchEvent(dom.NewEvent(msg.Event))
		s.config.Observer.EventHandled(msg.Event, time.Since(start))
	case TypeAttr:
		if msg.Value == nil {
			node.RemoveAttribute(msg.Key)
		} else {
			node.SetAttribute(msg.Key, *msg.Value)
		}
	}
	span.SetStatus(codes.Ok, "")
}

// teardown disconnects the document so element effects are disposed.
func (s *Session) teardown() {
	if s.doc == nil {
		return
	}
	s.doc.RecordMutations(false)
	body := s.doc.Body()
	s.doc.Task(func() {
		for _, c := range body.ChildNodes() {
			c.Remove()
		}
	})
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.server.remove(s)
		s.attached.Store(false)
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			s.conn.Close()
			s.conn = nil
		}
		s.mu.Unlock()
		s.logger.Debug("live: session closed")
	})
}

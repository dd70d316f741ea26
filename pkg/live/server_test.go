package live

import (
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/template"
)

// counterPage binds a click counter into the session document.
func counterPage(doc *dom.Document) error {
	count := reactive.NewSignal(0)
	inc := func() { count.Update(func(n int) int { return n + 1 }) }
	_, err := template.Bind(doc.Body(),
		template.HTML(`<button onclick="{{}}">+</button><output>{{}}</output>`, inc, count),
		template.Options{})
	return err
}

type countingObserver struct {
	opened, closed, events, patches, errors atomic.Int64
}

func (o *countingObserver) SessionOpened()                     { o.opened.Add(1) }
func (o *countingObserver) SessionClosed()                     { o.closed.Add(1) }
func (o *countingObserver) EventHandled(string, time.Duration) { o.events.Add(1) }
func (o *countingObserver) PatchesSent(n int)                  { o.patches.Add(int64(n)) }
func (o *countingObserver) ProtocolError()                     { o.errors.Add(1) }

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(counterPage, cfg)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live?session=" + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

var (
	sessionRE = regexp.MustCompile(`data-session="([^"]+)"`)
	buttonRE  = regexp.MustCompile(`<button data-nid="(\d+)"`)
)

func TestPageThenAttach(t *testing.T) {
	srv, ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	page := string(body)

	m := sessionRE.FindStringSubmatch(page)
	if m == nil {
		t.Fatalf("expected session id in page, got %s", page)
	}
	button := buttonRE.FindStringSubmatch(page)
	if button == nil {
		t.Fatalf("expected addressed button in page, got %s", page)
	}
	if strings.Contains(page, "onclick") {
		t.Error("expected event attributes not rendered")
	}
	if !strings.Contains(page, `src="/live/client.js"`) {
		t.Error("expected live client script tag")
	}
	if srv.Count() != 1 {
		t.Errorf("expected 1 session, got %d", srv.Count())
	}

	conn := dial(t, ts, m[1])
	init := readMessage(t, conn)
	if init.Type != TypeInit || init.Session != m[1] || init.HTML != "" {
		t.Fatalf("expected init for the page's session without html, got %+v", init)
	}
	if init.Body == 0 || init.Document == 0 {
		t.Errorf("expected body and document ids, got %+v", init)
	}

	if err := conn.WriteJSON(ClientMessage{Type: TypeEvent, Target: button[1], Event: "click"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != TypePatches || msg.Seq != 1 {
		t.Fatalf("expected first patches message, got %+v", msg)
	}
	if len(msg.Patches) != 1 || msg.Patches[0].Op != "setText" || msg.Patches[0].Value != "1" {
		t.Errorf("expected a single setText to 1, got %+v", msg.Patches)
	}
}

func TestAttachWithoutPage(t *testing.T) {
	srv, ts := newTestServer(t, Config{})
	conn := dial(t, ts, "")

	init := readMessage(t, conn)
	if init.Type != TypeInit || init.Session == "" {
		t.Fatalf("expected init, got %+v", init)
	}
	if !strings.Contains(init.HTML, "<output data-nid=") || !strings.Contains(init.HTML, "<!--t:") {
		t.Errorf("expected addressed body html, got %q", init.HTML)
	}
	if _, ok := srv.Session(init.Session); !ok {
		t.Error("expected the new session to be registered")
	}
}

func TestMalformedMessage(t *testing.T) {
	obs := &countingObserver{}
	_, ts := newTestServer(t, Config{Observer: obs})
	conn := dial(t, ts, "")
	readMessage(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"event","target":"x"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != TypeError || msg.Code != "E109" {
		t.Errorf("expected E109 error message, got %+v", msg)
	}
	if obs.errors.Load() != 1 {
		t.Errorf("expected 1 protocol error, got %d", obs.errors.Load())
	}
}

func TestAttrMessage(t *testing.T) {
	srv, ts := newTestServer(t, Config{})
	conn := dial(t, ts, "")
	init := readMessage(t, conn)
	s, _ := srv.Session(init.Session)

	var outputID uint64
	s.Do(func(doc *dom.Document) {
		outputID = doc.Body().QuerySelector("output").ID()
	})
	value := "polite"
	target := strconv.FormatUint(outputID, 10)
	if err := conn.WriteJSON(ClientMessage{Type: TypeAttr, Target: target, Key: "aria-live", Value: &value}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	msg := readMessage(t, conn)
	if len(msg.Patches) != 1 || msg.Patches[0].Op != "setAttr" || msg.Patches[0].Value != "polite" {
		t.Errorf("expected the attribute echoed as a patch, got %+v", msg.Patches)
	}
}

func TestSessionClosesWithConnection(t *testing.T) {
	obs := &countingObserver{}
	srv, ts := newTestServer(t, Config{Observer: obs})
	conn := dial(t, ts, "")
	init := readMessage(t, conn)
	s, _ := srv.Session(init.Session)

	conn.Close()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("expected session to close with its connection")
	}
	if srv.Count() != 0 {
		t.Errorf("expected no sessions, got %d", srv.Count())
	}
	if obs.opened.Load() != 1 || obs.closed.Load() != 1 {
		t.Errorf("expected one open and one close, got %d and %d", obs.opened.Load(), obs.closed.Load())
	}
	if err := s.Do(func(*dom.Document) {}); err != ErrSessionClosed {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestUnattachedSessionExpires(t *testing.T) {
	srv, ts := newTestServer(t, Config{AttachTimeout: 50 * time.Millisecond})
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	deadline := time.Now().Add(5 * time.Second)
	for srv.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Count() != 0 {
		t.Errorf("expected unattached session to expire, got %d", srv.Count())
	}
}

func TestServeScript(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/live/client.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/javascript") {
		t.Errorf("expected javascript content type, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "WebSocket") {
		t.Error("expected client script body")
	}
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://example.com", true},
		{"http://evil.com", false},
		{"::bad", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://example.com/live", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := SameOriginCheck(r); got != tt.want {
			t.Errorf("origin %q: expected %v, got %v", tt.origin, tt.want, got)
		}
	}
}

package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	genai "github.com/google-gemini/genai-go"
)

// Method selects the BidiGenerateContent variant: a static API
// key uses BidiGenerateContent, an ephemeral token uses
// BidiGenerateContentConstrained (which must be issued under v1alpha),
// and the music variant uses BidiGenerateMusic.
type Method string

const (
	MethodBidiGenerateContent            Method = "BidiGenerateContent"
	MethodBidiGenerateContentConstrained Method = "BidiGenerateContentConstrained"
	MethodBidiGenerateMusic              Method = "BidiGenerateMusic"
)

// ResumptionState is updated monotonically from the server's
// session_resumption_update messages: a new handle overrides
// only when supplied; resumable flag and last-consumed index are updated
// when present.
type ResumptionState struct {
	mu                             sync.RWMutex
	handle                         string
	resumable                      *bool
	lastConsumedClientMessageIndex *int64
}

func (r *ResumptionState) snapshot() (handle string, resumable *bool, lastIdx *int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handle, r.resumable, r.lastConsumedClientMessageIndex
}

func (r *ResumptionState) update(u *resumptionUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.NewHandle != "" {
		r.handle = u.NewHandle
	}
	if u.Resumable != nil {
		r.resumable = u.Resumable
	}
	if u.LastConsumedClientMessageIndex != nil {
		r.lastConsumedClientMessageIndex = u.LastConsumedClientMessageIndex
	}
}

// Handle returns the most recently observed resumption handle.
func (r *ResumptionState) Handle() string {
	h, _, _ := r.snapshot()
	return h
}

// GoAwayState records time_left from server go_away messages.
type GoAwayState struct {
	mu       sync.RWMutex
	timeLeft string
}

func (g *GoAwayState) update(ga *goAway) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timeLeft = ga.TimeLeft
}

func (g *GoAwayState) TimeLeft() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.timeLeft
}

// Config configures Connect.
type Config struct {
	BaseURL          string // https://... or http://..., coerced to ws(s)
	APIVersion       string
	Method           Method
	APIKey           string // used when Method != Constrained
	EphemeralToken   string // used when Method == Constrained
	Setup            Setup
	HandshakeTimeout time.Duration // default 30s
}

// Session is a Live session: one WebSocket plus two
// single-producer/single-consumer queues, multiplexed by a single
// background goroutine.
type Session struct {
	conn       *websocket.Conn
	sessionID  string
	Resumption ResumptionState
	GoAway     GoAwayState

	outboundC chan any
	inboundC  chan Message
	errC      chan error
	shutdownC chan struct{}
	closeOnce sync.Once
}

func buildWebSocketURL(cfg Config) (string, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}

	version := cfg.APIVersion
	if cfg.Method == MethodBidiGenerateContentConstrained {
		version = "v1alpha"
	}
	if version == "" {
		version = "v1beta"
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + fmt.Sprintf(
		"/ws/google.ai.generativelanguage.%s.GenerativeService.%s", version, cfg.Method)
	return u.String(), nil
}

// Connect dials the WebSocket, performs the setup handshake, and starts
// the background multiplexer. It returns once setup_complete is observed
// or the handshake timeout elapses.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	wsURL, err := buildWebSocketURL(cfg)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	switch cfg.Method {
	case MethodBidiGenerateContentConstrained:
		header.Set("authorization", "Token "+cfg.EphemeralToken)
	default:
		header.Set("x-goog-api-key", cfg.APIKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, genai.NewWebSocketError(err)
	}

	s := &Session{
		conn:      conn,
		outboundC: make(chan any, 64),
		inboundC:  make(chan Message, 8),
		errC:      make(chan error, 1),
		shutdownC: make(chan struct{}),
	}

	if err := conn.WriteJSON(clientMessage{Setup: &cfg.Setup}); err != nil {
		conn.Close()
		return nil, genai.NewWebSocketError(err)
	}

	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := s.awaitSetupComplete(timeout); err != nil {
		conn.Close()
		return nil, err
	}

	go s.multiplex()
	return s, nil
}

func (s *Session) awaitSetupComplete(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return err
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return handshakeTimeoutOr(err, deadline)
		}
		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.SetupComplete != nil {
			s.sessionID = msg.SetupComplete.SessionID
			_ = s.conn.SetReadDeadline(time.Time{})
			return nil
		}
	}
}

func handshakeTimeoutOr(err error, deadline time.Time) error {
	if time.Now().After(deadline) {
		return genai.NewTimeoutError("live setup handshake timed out: " + err.Error())
	}
	return genai.NewWebSocketError(err)
}

// SessionID returns the session id captured from setup_complete.
func (s *Session) SessionID() string { return s.sessionID }

// multiplex is the only writer into the inbound queue and writes outbound
// messages to the WebSocket; it select{}s over (outbound dequeue, frames
// from readLoop, shutdown signal). readLoop, which it starts, does the
// WebSocket reads.
func (s *Session) multiplex() {
	readC := make(chan wsFrame, 1)
	go s.readLoop(readC)

	for {
		select {
		case <-s.shutdownC:
			return

		case out, ok := <-s.outboundC:
			if !ok {
				return
			}
			if err := s.conn.WriteJSON(out); err != nil {
				s.errC <- genai.NewWebSocketError(err)
				return
			}

		case frame, ok := <-readC:
			if !ok {
				return
			}
			if frame.err != nil {
				s.errC <- genai.NewWebSocketError(frame.err)
				close(s.inboundC)
				return
			}
			s.handleInbound(frame)
		}
	}
}

type wsFrame struct {
	messageType int
	data        []byte
	err         error
}

func (s *Session) readLoop(out chan<- wsFrame) {
	defer close(out)
	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			// Close() may have torn the connection down while a read was in
			// flight; selecting on shutdownC keeps this send from blocking
			// forever once the multiplexer has stopped draining.
			select {
			case out <- wsFrame{err: err}:
			case <-s.shutdownC:
			}
			return
		}
		if mt == websocket.PingMessage {
			_ = s.conn.WriteMessage(websocket.PongMessage, nil)
			continue
		}
		if mt == websocket.CloseMessage {
			return
		}
		select {
		case out <- wsFrame{messageType: mt, data: data}:
		case <-s.shutdownC:
			return
		}
	}
}

// handleInbound decodes a server message, updates resumption/go-away
// state, and forwards it to the inbound queue. A decode error is
// surfaced to the consumer without terminating the session.
func (s *Session) handleInbound(frame wsFrame) {
	var msg serverMessage
	if err := json.Unmarshal(frame.data, &msg); err != nil {
		select {
		case s.errC <- genai.NewParseError("live: decode error: " + err.Error()):
		default:
		}
		return
	}
	if msg.SessionResumptionUpdate != nil {
		s.Resumption.update(msg.SessionResumptionUpdate)
	}
	if msg.GoAway != nil {
		s.GoAway.update(msg.GoAway)
	}
	// A full inbound queue pauses the reader until the consumer catches
	// up; shutdown unblocks the pause.
	select {
	case s.inboundC <- Message{Raw: frame.data}:
	case <-s.shutdownC:
	}
}

// Inbound returns the channel of decoded server messages.
func (s *Session) Inbound() <-chan Message { return s.inboundC }

// Errors returns the channel carrying a terminal I/O error or a
// non-terminating decode error.
func (s *Session) Errors() <-chan error { return s.errC }

// SendClientContent enqueues a client_content outbound message.
func (s *Session) SendClientContent(cc ClientContent) error {
	return s.enqueue(clientMessage{ClientContent: &cc})
}

// SendRealtimeInput enqueues a realtime_input outbound message.
func (s *Session) SendRealtimeInput(ri RealtimeInput) error {
	return s.enqueue(clientMessage{RealtimeInput: &ri})
}

// SendToolResponse enqueues a tool_response outbound message.
func (s *Session) SendToolResponse(tr ToolResponse) error {
	return s.enqueue(clientMessage{ToolResponse: &tr})
}

func (s *Session) enqueue(msg any) error {
	select {
	case s.outboundC <- msg:
		return nil
	case <-s.shutdownC:
		return genai.NewChannelClosedError()
	}
}

// Close sends a close frame and cancels the multiplexer. Pending
// outbound messages are dropped.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownC)
		err = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	})
	return err
}

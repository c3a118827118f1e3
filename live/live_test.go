package live_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/google-gemini/genai-go/live"
)

// newEchoServer upgrades every connection, immediately sends
// setupComplete, then for each inbound clientContent message sends back
// a sessionResumptionUpdate followed by a goAway.
func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := conn.WriteJSON(map[string]any{
			"setupComplete": map[string]any{"sessionId": "sess-1"},
		}); err != nil {
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg map[string]any
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if _, ok := msg["clientContent"]; !ok {
				continue
			}
			_ = conn.WriteJSON(map[string]any{
				"sessionResumptionUpdate": map[string]any{"newHandle": "handle-1", "resumable": true},
			})
			_ = conn.WriteJSON(map[string]any{
				"goAway": map[string]any{"timeLeft": "30s"},
			})
		}
	}))
	return srv
}

func TestConnectPerformsSetupHandshake(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()

	cfg := live.Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Method:  live.MethodBidiGenerateContent,
		Setup:   live.Setup{Model: "gemini-2.0-flash"},
	}
	session, err := live.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer session.Close()

	if session.SessionID() != "sess-1" {
		t.Errorf("SessionID() = %q, want sess-1", session.SessionID())
	}
}

func TestSessionReceivesResumptionAndGoAwayUpdates(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()

	session, err := live.Connect(context.Background(), live.Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Method:  live.MethodBidiGenerateContent,
		Setup:   live.Setup{Model: "gemini-2.0-flash"},
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer session.Close()

	if err := session.SendClientContent(live.ClientContent{TurnComplete: true}); err != nil {
		t.Fatalf("SendClientContent: %v", err)
	}

	// The server replies with two messages (resumption update, go_away);
	// drain both before asserting on session state.
	for i := 0; i < 2; i++ {
		select {
		case <-session.Inbound():
		case err := <-session.Errors():
			t.Fatalf("unexpected session error: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for inbound message")
		}
	}

	if session.GoAway.TimeLeft() != "30s" {
		t.Errorf("GoAway.TimeLeft() = %q, want 30s", session.GoAway.TimeLeft())
	}
	if session.Resumption.Handle() != "handle-1" {
		t.Errorf("Resumption.Handle() = %q, want handle-1", session.Resumption.Handle())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()

	session, err := live.Connect(context.Background(), live.Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Method:  live.MethodBidiGenerateContent,
		Setup:   live.Setup{Model: "gemini-2.0-flash"},
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got: %v", err)
	}
}

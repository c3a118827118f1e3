package live

import (
	"context"
	"encoding/json"
)

// MusicClientContent carries weighted prompts and playback control for
// the Live Music variant: a parallel, simpler state machine over the
// same WebSocket multiplexer, with no tool responses.
type MusicClientContent struct {
	WeightedPrompts       json.RawMessage `json:"weightedPrompts,omitempty"`
	MusicGenerationConfig json.RawMessage `json:"musicGenerationConfig,omitempty"`
	PlaybackControl       string          `json:"playbackControl,omitempty"`
}

type musicClientMessage struct {
	Setup         *Setup              `json:"setup,omitempty"`
	ClientContent *MusicClientContent `json:"clientContent,omitempty"`
}

// MusicSession wraps the same Session machinery for BidiGenerateMusic: no
// tool declarations, no function responses, outbound messages are limited
// to setup and weighted-prompt/config/playback-control client content.
type MusicSession struct {
	inner *Session
}

// ConnectMusic dials the music variant of the Live endpoint. cfg.Method is
// forced to MethodBidiGenerateMusic regardless of the caller's setting.
func ConnectMusic(ctx context.Context, cfg Config) (*MusicSession, error) {
	cfg.Method = MethodBidiGenerateMusic
	s, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &MusicSession{inner: s}, nil
}

// SendWeightedPrompts enqueues a weighted-prompts/config/playback-control
// client_content message.
func (m *MusicSession) SendWeightedPrompts(content MusicClientContent) error {
	return m.inner.enqueue(musicClientMessage{ClientContent: &content})
}

// Inbound returns the channel of decoded server messages (audio chunks,
// go_away, session_resumption_update carried the same way as the content
// variant).
func (m *MusicSession) Inbound() <-chan Message { return m.inner.Inbound() }

// Errors returns the terminal/non-terminal error channel.
func (m *MusicSession) Errors() <-chan error { return m.inner.Errors() }

// Close shuts the underlying session down.
func (m *MusicSession) Close() error { return m.inner.Close() }

// SessionID returns the session id captured from setup_complete.
func (m *MusicSession) SessionID() string { return m.inner.SessionID() }

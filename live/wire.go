// Package live implements the full-duplex WebSocket Live session: setup
// handshake, bidirectional typed channels, ping/pong, resumption state,
// and graceful shutdown, multiplexed by a single background goroutine.
// Transport is github.com/gorilla/websocket.
package live

import "encoding/json"

// Setup is the per-connection Live setup: model name, optional
// generation config, system instruction, tools, realtime-input config,
// session-resumption config, context-window-compression config, audio
// transcription configs, proactivity, explicit-VAD flag.
type Setup struct {
	Model                    string                   `json:"model"`
	GenerationConfig         json.RawMessage          `json:"generationConfig,omitempty"`
	SystemInstruction        json.RawMessage          `json:"systemInstruction,omitempty"`
	Tools                    json.RawMessage          `json:"tools,omitempty"`
	RealtimeInputConfig      json.RawMessage          `json:"realtimeInputConfig,omitempty"`
	SessionResumption        *SessionResumptionConfig `json:"sessionResumption,omitempty"`
	ContextWindowCompression json.RawMessage          `json:"contextWindowCompression,omitempty"`
	InputAudioTranscription  json.RawMessage          `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription json.RawMessage          `json:"outputAudioTranscription,omitempty"`
	Proactivity              json.RawMessage          `json:"proactivity,omitempty"`
	ExplicitVAD              bool                     `json:"-"`
}

// SessionResumptionConfig is the client->server request to enable or
// resume session resumption; an empty Handle requests a new resumable
// session, a non-empty Handle resumes a prior one.
type SessionResumptionConfig struct {
	Handle string `json:"handle,omitempty"`
}

// clientMessage is the tagged union of outbound message variants:
// setup, client_content, realtime_input, tool_response. The top-level
// fields are mutually exclusive.
type clientMessage struct {
	Setup         *Setup         `json:"setup,omitempty"`
	ClientContent *ClientContent `json:"clientContent,omitempty"`
	RealtimeInput *RealtimeInput `json:"realtimeInput,omitempty"`
	ToolResponse  *ToolResponse  `json:"toolResponse,omitempty"`
}

// ClientContent carries turns + a turn_complete flag.
type ClientContent struct {
	Turns        json.RawMessage `json:"turns,omitempty"`
	TurnComplete bool            `json:"turnComplete"`
}

// RealtimeInput carries media/audio/video/text/activity markers and the
// audio_stream_end flag.
type RealtimeInput struct {
	Media          json.RawMessage `json:"media,omitempty"`
	Audio          json.RawMessage `json:"audio,omitempty"`
	Video          json.RawMessage `json:"video,omitempty"`
	Text           string          `json:"text,omitempty"`
	ActivityStart  bool            `json:"activityStart,omitempty"`
	ActivityEnd    bool            `json:"activityEnd,omitempty"`
	AudioStreamEnd bool            `json:"audioStreamEnd,omitempty"`
}

// ToolResponse carries function-response parts back to the model.
type ToolResponse struct {
	FunctionResponses json.RawMessage `json:"functionResponses,omitempty"`
}

// serverMessage is the inbound envelope; only the fields the multiplexer
// inspects are modeled explicitly, the rest is forwarded as raw JSON to
// the consumer via Raw.
type serverMessage struct {
	SetupComplete           *setupComplete    `json:"setupComplete,omitempty"`
	SessionResumptionUpdate *resumptionUpdate `json:"sessionResumptionUpdate,omitempty"`
	GoAway                  *goAway           `json:"goAway,omitempty"`
}

type setupComplete struct {
	SessionID string `json:"sessionId"`
}

type resumptionUpdate struct {
	NewHandle                      string `json:"newHandle"`
	Resumable                      *bool  `json:"resumable,omitempty"`
	LastConsumedClientMessageIndex *int64 `json:"lastConsumedClientMessageIndex,omitempty"`
}

type goAway struct {
	TimeLeft string `json:"timeLeft"`
}

// Message is the decoded inbound server message handed to the consumer;
// Raw preserves the full payload for fields this package does not model
// explicitly.
type Message struct {
	Raw json.RawMessage
}

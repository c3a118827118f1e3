package genai_test

import (
	"encoding/json"
	"testing"

	genai "github.com/google-gemini/genai-go"
)

func roundTrip(t *testing.T, p genai.Part) genai.Part {
	t.Helper()
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out genai.Part
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return out
}

func TestPartJSONRoundTripText(t *testing.T) {
	p := genai.NewTextPart("hello world")
	out := roundTrip(t, p)
	if out.Kind() != genai.PartKindText || out.Text.Text != "hello world" {
		t.Errorf("round trip = %+v", out)
	}
}

// []byte fields go through encoding/json's standard base64 encoding; the
// round trip must reproduce the original bytes exactly, including ones
// that aren't valid UTF-8.
func TestPartJSONRoundTripInlineDataBase64(t *testing.T) {
	data := []byte{0x00, 0xff, 0x10, 0x20, 0xfe, 0x7b}
	p := genai.NewInlineDataPart("image/png", data)
	out := roundTrip(t, p)
	if out.Kind() != genai.PartKindInlineData {
		t.Fatalf("kind = %v, want inline data", out.Kind())
	}
	if out.InlineData.MimeType != "image/png" {
		t.Errorf("mime type = %q", out.InlineData.MimeType)
	}
	if string(out.InlineData.Data) != string(data) {
		t.Errorf("data = %v, want %v", out.InlineData.Data, data)
	}
}

func TestPartJSONRoundTripFileData(t *testing.T) {
	p := genai.NewFileDataPart("https://example.com/f.png", "image/png")
	out := roundTrip(t, p)
	if out.Kind() != genai.PartKindFileData || out.FileData.URI != "https://example.com/f.png" {
		t.Errorf("round trip = %+v", out)
	}
}

func TestPartJSONRoundTripFunctionCall(t *testing.T) {
	p := genai.NewFunctionCallPart("echo", map[string]any{"msg": "hi"}, genai.WithFunctionCallID("call-1"))
	out := roundTrip(t, p)
	if out.Kind() != genai.PartKindFunctionCall {
		t.Fatalf("kind = %v, want function call", out.Kind())
	}
	if out.FunctionCall.Name == nil || *out.FunctionCall.Name != "echo" {
		t.Errorf("name = %v", out.FunctionCall.Name)
	}
	if out.FunctionCall.ID == nil || *out.FunctionCall.ID != "call-1" {
		t.Errorf("id = %v", out.FunctionCall.ID)
	}
}

func TestPartJSONRoundTripFunctionResponse(t *testing.T) {
	p := genai.NewFunctionResponsePart("echo", map[string]any{"ok": true}, genai.WithFunctionResponseID("call-1"))
	out := roundTrip(t, p)
	if out.Kind() != genai.PartKindFunctionResponse {
		t.Fatalf("kind = %v, want function response", out.Kind())
	}
	if out.FunctionResponse.Name == nil || *out.FunctionResponse.Name != "echo" {
		t.Errorf("name = %v", out.FunctionResponse.Name)
	}
}

func TestPartJSONRoundTripExecutableCode(t *testing.T) {
	p := genai.NewExecutableCodePart("print(1)", "python")
	out := roundTrip(t, p)
	if out.Kind() != genai.PartKindExecutableCode || out.ExecutableCode.Code != "print(1)" {
		t.Errorf("round trip = %+v", out)
	}
}

func TestPartJSONRoundTripCodeExecutionResult(t *testing.T) {
	output := "1"
	p := genai.NewCodeExecutionResultPart("OK", &output)
	out := roundTrip(t, p)
	if out.Kind() != genai.PartKindCodeExecutionResult || out.CodeExecutionResult.Outcome != "OK" {
		t.Errorf("round trip = %+v", out)
	}
	if out.CodeExecutionResult.Output == nil || *out.CodeExecutionResult.Output != "1" {
		t.Errorf("output = %v", out.CodeExecutionResult.Output)
	}
}

func TestPartJSONRoundTripOutOfBandAttributes(t *testing.T) {
	p := genai.NewTextPart("thinking...").Apply(
		genai.WithThought(true),
		genai.WithThoughtSignature([]byte("sig-bytes")),
		genai.WithVideoMetadata(genai.VideoMetadata{StartOffset: "0s", EndOffset: "5s"}),
	)
	out := roundTrip(t, p)
	if !out.Thought {
		t.Error("expected Thought to round-trip true")
	}
	if string(out.ThoughtSignature) != "sig-bytes" {
		t.Errorf("thought signature = %q", out.ThoughtSignature)
	}
	if out.VideoMetadata == nil || out.VideoMetadata.StartOffset != "0s" || out.VideoMetadata.EndOffset != "5s" {
		t.Errorf("video metadata = %+v", out.VideoMetadata)
	}
}

func TestContentJSONRoundTrip(t *testing.T) {
	c := genai.NewUserContent(genai.NewTextPart("hi"), genai.NewInlineDataPart("image/png", []byte{1, 2, 3}))
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out genai.Content
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Role != genai.RoleUser {
		t.Errorf("role = %v", out.Role)
	}
	if len(out.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(out.Parts))
	}
	if out.Text() != "hi" {
		t.Errorf("Text() = %q, want hi", out.Text())
	}
}

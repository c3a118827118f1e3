package genai

import (
	"encoding/json"
	"fmt"
)

// Role is the author of a Content value.
type Role string

const (
	RoleUser     Role = "user"
	RoleModel    Role = "model"
	RoleFunction Role = "function"
)

// VideoMetadata carries a per-part time window for video content.
type VideoMetadata struct {
	StartOffset string `json:"startOffset,omitempty"`
	EndOffset   string `json:"endOffset,omitempty"`
	FPS         *float64
}

// PartKind identifies which variant of the Part tagged union is populated.
type PartKind string

const (
	PartKindText                PartKind = "text"
	PartKindInlineData          PartKind = "inline_data"
	PartKindFileData            PartKind = "file_data"
	PartKindFunctionCall        PartKind = "function_call"
	PartKindFunctionResponse    PartKind = "function_response"
	PartKindExecutableCode      PartKind = "executable_code"
	PartKindCodeExecutionResult PartKind = "code_execution_result"
)

// InlineData is raw bytes carried directly in a Part, MIME-tagged.
type InlineData struct {
	MimeType string
	Data     []byte
}

// FileData is a by-reference file carried in a Part.
type FileData struct {
	URI      string
	MimeType string
}

// FunctionCall is a model-authored tool invocation request.
type FunctionCall struct {
	ID           *string
	Name         *string
	Args         json.RawMessage
	PartialArgs  json.RawMessage
	WillContinue *bool
}

// FunctionResponse carries a tool's result back to the model. Parts may
// carry inline or file media alongside the JSON response value.
type FunctionResponse struct {
	ID           *string
	Name         *string
	Response     json.RawMessage
	Parts        []Part
	WillContinue *bool
	Scheduling   *string
}

// ExecutableCode is a model-authored code block for the code-execution
// tool.
type ExecutableCode struct {
	Code     string
	Language string
}

// CodeExecutionResult is the outcome of running an ExecutableCode block.
type CodeExecutionResult struct {
	Outcome string
	Output  *string
}

// Part is a tagged variant: exactly one of the typed fields below is
// populated. Go has no sum types, so this simulates one via mutually
// exclusive optional fields plus constructor functions that enforce the
// invariant.
type Part struct {
	Text                *TextPartValue
	InlineData          *InlineData
	FileData            *FileData
	FunctionCall        *FunctionCall
	FunctionResponse    *FunctionResponse
	ExecutableCode      *ExecutableCode
	CodeExecutionResult *CodeExecutionResult

	// Out-of-band attributes, valid regardless of which variant above is
	// populated.
	Thought          bool
	ThoughtSignature []byte
	VideoMetadata    *VideoMetadata
}

// TextPartValue wraps a text Part's string so the Part struct always
// distinguishes "no text part" (nil) from "empty text" (non-nil, empty).
type TextPartValue struct {
	Text string
}

// Kind reports which variant of the tagged union is populated.
func (p Part) Kind() PartKind {
	switch {
	case p.Text != nil:
		return PartKindText
	case p.InlineData != nil:
		return PartKindInlineData
	case p.FileData != nil:
		return PartKindFileData
	case p.FunctionCall != nil:
		return PartKindFunctionCall
	case p.FunctionResponse != nil:
		return PartKindFunctionResponse
	case p.ExecutableCode != nil:
		return PartKindExecutableCode
	case p.CodeExecutionResult != nil:
		return PartKindCodeExecutionResult
	default:
		return ""
	}
}

// partJSON is the wire shape for a Part, used only for the genai package's
// own canonical JSON representation (the dialect adapter has its own wire
// structs in internal/wire for the actual HTTP payloads).
type partJSON struct {
	Text                string               `json:"text,omitempty"`
	InlineData          *inlineDataJSON      `json:"inlineData,omitempty"`
	FileData            *fileDataJSON        `json:"fileData,omitempty"`
	FunctionCall        *FunctionCall        `json:"functionCall,omitempty"`
	FunctionResponse    *FunctionResponse    `json:"functionResponse,omitempty"`
	ExecutableCode      *ExecutableCode      `json:"executableCode,omitempty"`
	CodeExecutionResult *CodeExecutionResult `json:"codeExecutionResult,omitempty"`
	Thought             bool                 `json:"thought,omitempty"`
	ThoughtSignature    []byte               `json:"thoughtSignature,omitempty"`
	VideoMetadata       *VideoMetadata       `json:"videoMetadata,omitempty"`
}

type inlineDataJSON struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type fileDataJSON struct {
	URI      string `json:"fileUri"`
	MimeType string `json:"mimeType,omitempty"`
}

func (p Part) MarshalJSON() ([]byte, error) {
	out := partJSON{
		Thought:          p.Thought,
		ThoughtSignature: p.ThoughtSignature,
		VideoMetadata:    p.VideoMetadata,
	}
	switch {
	case p.Text != nil:
		out.Text = p.Text.Text
	case p.InlineData != nil:
		out.InlineData = &inlineDataJSON{MimeType: p.InlineData.MimeType, Data: p.InlineData.Data}
	case p.FileData != nil:
		out.FileData = &fileDataJSON{URI: p.FileData.URI, MimeType: p.FileData.MimeType}
	case p.FunctionCall != nil:
		out.FunctionCall = p.FunctionCall
	case p.FunctionResponse != nil:
		out.FunctionResponse = p.FunctionResponse
	case p.ExecutableCode != nil:
		out.ExecutableCode = p.ExecutableCode
	case p.CodeExecutionResult != nil:
		out.CodeExecutionResult = p.CodeExecutionResult
	}
	return json.Marshal(out)
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var in partJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("part: %w", err)
	}
	p.Thought = in.Thought
	p.ThoughtSignature = in.ThoughtSignature
	p.VideoMetadata = in.VideoMetadata
	switch {
	case in.InlineData != nil:
		p.InlineData = &InlineData{MimeType: in.InlineData.MimeType, Data: in.InlineData.Data}
	case in.FileData != nil:
		p.FileData = &FileData{URI: in.FileData.URI, MimeType: in.FileData.MimeType}
	case in.FunctionCall != nil:
		p.FunctionCall = in.FunctionCall
	case in.FunctionResponse != nil:
		p.FunctionResponse = in.FunctionResponse
	case in.ExecutableCode != nil:
		p.ExecutableCode = in.ExecutableCode
	case in.CodeExecutionResult != nil:
		p.CodeExecutionResult = in.CodeExecutionResult
	default:
		p.Text = &TextPartValue{Text: in.Text}
	}
	return nil
}

// Content is an ordered sequence of Parts plus an optional Role.
type Content struct {
	Parts []Part
	Role  Role
}

// Text concatenates every text Part in the Content.
func (c Content) Text() string {
	var out string
	for _, p := range c.Parts {
		if p.Text != nil {
			out += p.Text.Text
		}
	}
	return out
}

type contentJSON struct {
	Parts []Part `json:"parts"`
	Role  Role   `json:"role,omitempty"`
}

func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentJSON{Parts: c.Parts, Role: c.Role})
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var in contentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	c.Parts = in.Parts
	c.Role = in.Role
	return nil
}

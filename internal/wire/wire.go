// Package wire holds the on-wire JSON structs shared by both backend
// dialects.
package wire

import "encoding/json"

type Blob struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type FileData struct {
	FileURI  string `json:"fileUri"`
	MimeType string `json:"mimeType,omitempty"`
}

type FunctionCall struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Args         json.RawMessage `json:"args,omitempty"`
	PartialArgs  json.RawMessage `json:"partialArgs,omitempty"`
	WillContinue *bool           `json:"willContinue,omitempty"`
}

type FunctionResponse struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Response     json.RawMessage `json:"response,omitempty"`
	Parts        []Part          `json:"parts,omitempty"`
	WillContinue *bool           `json:"willContinue,omitempty"`
	Scheduling   string          `json:"scheduling,omitempty"`
}

type ExecutableCode struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

type CodeExecutionResult struct {
	Outcome string `json:"outcome"`
	Output  string `json:"output,omitempty"`
}

type VideoMetadata struct {
	StartOffset string   `json:"startOffset,omitempty"`
	EndOffset   string   `json:"endOffset,omitempty"`
	FPS         *float64 `json:"fps,omitempty"`
}

// Part is the on-wire representation of a Part, one JSON object with at
// most one kind-specific field populated (server's own convention, not a
// discriminated union with a type tag).
type Part struct {
	Text                string               `json:"text,omitempty"`
	InlineData          *Blob                `json:"inlineData,omitempty"`
	FileData            *FileData            `json:"fileData,omitempty"`
	FunctionCall        *FunctionCall        `json:"functionCall,omitempty"`
	FunctionResponse    *FunctionResponse    `json:"functionResponse,omitempty"`
	ExecutableCode      *ExecutableCode      `json:"executableCode,omitempty"`
	CodeExecutionResult *CodeExecutionResult `json:"codeExecutionResult,omitempty"`
	Thought             bool                 `json:"thought,omitempty"`
	ThoughtSignature    []byte               `json:"thoughtSignature,omitempty"`
	VideoMetadata       *VideoMetadata       `json:"videoMetadata,omitempty"`
}

type Content struct {
	Parts []Part `json:"parts,omitempty"`
	Role  string `json:"role,omitempty"`
}

type GenerationConfig struct {
	Temperature        *float64       `json:"temperature,omitempty"`
	TopP               *float64       `json:"topP,omitempty"`
	TopK               *float64       `json:"topK,omitempty"`
	CandidateCount     *int           `json:"candidateCount,omitempty"`
	MaxOutputTokens    *int           `json:"maxOutputTokens,omitempty"`
	StopSequences      []string       `json:"stopSequences,omitempty"`
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseJsonSchema map[string]any `json:"responseJsonSchema,omitempty"`
}

type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Response    map[string]any `json:"response,omitempty"`
}

type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations,omitempty"`
	Retrieval            map[string]any        `json:"retrieval,omitempty"`
	CodeExecution        map[string]any        `json:"codeExecution,omitempty"`
	URLContext           map[string]any        `json:"urlContext,omitempty"`
	ComputerUse          map[string]any        `json:"computerUse,omitempty"`
	GoogleSearch         map[string]any        `json:"googleSearch,omitempty"`
	GoogleMaps           map[string]any        `json:"googleMaps,omitempty"`
	FileSearch           map[string]any        `json:"fileSearch,omitempty"`
}

type FunctionCallingConfig struct {
	Mode                 string   `json:"mode,omitempty"`
	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

type ToolConfig struct {
	FunctionCallingConfig       *FunctionCallingConfig `json:"functionCallingConfig,omitempty"`
	StreamFunctionCallArguments bool                   `json:"streamFunctionCallArguments,omitempty"`
}

type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []SafetySetting   `json:"safetySettings,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
	ToolConfig        *ToolConfig       `json:"toolConfig,omitempty"`
	CachedContent     string            `json:"cachedContent,omitempty"`
	Labels            map[string]string `json:"labels,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount        int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount    int `json:"candidatesTokenCount,omitempty"`
	CachedContentTokenCount int `json:"cachedContentTokenCount,omitempty"`
	ThoughtsTokenCount      int `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount         int `json:"totalTokenCount,omitempty"`
}

type Candidate struct {
	Content            Content          `json:"content"`
	FinishReason       string           `json:"finishReason,omitempty"`
	CitationMetadata   map[string]any   `json:"citationMetadata,omitempty"`
	GroundingMetadata  map[string]any   `json:"groundingMetadata,omitempty"`
	SafetyRatings      []map[string]any `json:"safetyRatings,omitempty"`
	URLContextMetadata map[string]any   `json:"urlContextMetadata,omitempty"`
}

type GenerateContentResponse struct {
	Candidates     []Candidate    `json:"candidates,omitempty"`
	PromptFeedback map[string]any `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion   string         `json:"modelVersion,omitempty"`
	ResponseID     string         `json:"responseId,omitempty"`
}

// Operation is the long-running-operation envelope. On the Gemini-API
// dialect a video-generation result decodes into Response still nested
// under generateVideoResponse; the root package unwraps it after
// decoding.
type Operation struct {
	Name     string         `json:"name"`
	Done     bool           `json:"done,omitempty"`
	Response map[string]any `json:"response,omitempty"`
	Error    map[string]any `json:"error,omitempty"`
}

type ListResponse struct {
	Items         []json.RawMessage `json:"-"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

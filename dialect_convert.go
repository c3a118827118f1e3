package genai

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/google-gemini/genai-go/internal/dialect"
	"github.com/google-gemini/genai-go/internal/sliceutils"
	"github.com/google-gemini/genai-go/internal/wire"
)

// Dialect re-exports internal/dialect.Dialect at the package boundary so
// callers never need to import the internal package.
type Dialect = dialect.Dialect

const (
	GeminiAPI = dialect.GeminiAPI
	Vertex    = dialect.Vertex
)

// toWireContent converts a canonical Content to its on-wire form.
func toWireContent(c Content) wire.Content {
	return wire.Content{
		Role:  string(c.Role),
		Parts: sliceutils.Map(c.Parts, toWirePart),
	}
}

func toWirePart(p Part) wire.Part {
	out := wire.Part{
		Thought:          p.Thought,
		ThoughtSignature: p.ThoughtSignature,
	}
	if p.VideoMetadata != nil {
		out.VideoMetadata = &wire.VideoMetadata{
			StartOffset: p.VideoMetadata.StartOffset,
			EndOffset:   p.VideoMetadata.EndOffset,
			FPS:         p.VideoMetadata.FPS,
		}
	}
	switch {
	case p.Text != nil:
		out.Text = p.Text.Text
	case p.InlineData != nil:
		out.InlineData = &wire.Blob{MimeType: p.InlineData.MimeType, Data: p.InlineData.Data}
	case p.FileData != nil:
		out.FileData = &wire.FileData{FileURI: p.FileData.URI, MimeType: p.FileData.MimeType}
	case p.FunctionCall != nil:
		fc := p.FunctionCall
		out.FunctionCall = &wire.FunctionCall{
			ID:           deref(fc.ID),
			Name:         deref(fc.Name),
			Args:         fc.Args,
			PartialArgs:  fc.PartialArgs,
			WillContinue: fc.WillContinue,
		}
	case p.FunctionResponse != nil:
		fr := p.FunctionResponse
		out.FunctionResponse = &wire.FunctionResponse{
			ID:           deref(fr.ID),
			Name:         deref(fr.Name),
			Response:     fr.Response,
			Parts:        sliceutils.Map(fr.Parts, toWirePart),
			WillContinue: fr.WillContinue,
			Scheduling:   deref(fr.Scheduling),
		}
	case p.ExecutableCode != nil:
		out.ExecutableCode = &wire.ExecutableCode{Code: p.ExecutableCode.Code, Language: p.ExecutableCode.Language}
	case p.CodeExecutionResult != nil:
		out.CodeExecutionResult = &wire.CodeExecutionResult{
			Outcome: p.CodeExecutionResult.Outcome,
			Output:  deref(p.CodeExecutionResult.Output),
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// fromWireContent is the reverse of toWireContent.
func fromWireContent(c wire.Content) Content {
	return Content{
		Role:  Role(c.Role),
		Parts: sliceutils.Map(c.Parts, fromWirePart),
	}
}

func fromWirePart(p wire.Part) Part {
	out := Part{Thought: p.Thought, ThoughtSignature: p.ThoughtSignature}
	if p.VideoMetadata != nil {
		out.VideoMetadata = &VideoMetadata{StartOffset: p.VideoMetadata.StartOffset, EndOffset: p.VideoMetadata.EndOffset, FPS: p.VideoMetadata.FPS}
	}
	switch {
	case p.InlineData != nil:
		out.InlineData = &InlineData{MimeType: p.InlineData.MimeType, Data: p.InlineData.Data}
	case p.FileData != nil:
		out.FileData = &FileData{URI: p.FileData.FileURI, MimeType: p.FileData.MimeType}
	case p.FunctionCall != nil:
		fc := p.FunctionCall
		id := fc.ID
		if id == "" {
			// the model omitted an id; synthesize one so downstream tool
			// dispatch always has a stable key.
			id = "call_" + uuid.NewString()
		}
		out.FunctionCall = &FunctionCall{
			ID:           &id,
			Name:         strPtrOrNil(fc.Name),
			Args:         fc.Args,
			PartialArgs:  fc.PartialArgs,
			WillContinue: fc.WillContinue,
		}
	case p.FunctionResponse != nil:
		fr := p.FunctionResponse
		out.FunctionResponse = &FunctionResponse{
			ID:           strPtrOrNil(fr.ID),
			Name:         strPtrOrNil(fr.Name),
			Response:     fr.Response,
			Parts:        sliceutils.Map(fr.Parts, fromWirePart),
			WillContinue: fr.WillContinue,
			Scheduling:   strPtrOrNil(fr.Scheduling),
		}
	case p.ExecutableCode != nil:
		out.ExecutableCode = &ExecutableCode{Code: p.ExecutableCode.Code, Language: p.ExecutableCode.Language}
	case p.CodeExecutionResult != nil:
		out.CodeExecutionResult = &CodeExecutionResult{Outcome: p.CodeExecutionResult.Outcome, Output: strPtrOrNil(p.CodeExecutionResult.Output)}
	default:
		out.Text = &TextPartValue{Text: p.Text}
	}
	return out
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toWireSchema(s *Schema) map[string]any {
	if s == nil {
		return nil
	}
	return s.asJSONSchema()
}

func toWireFunctionDeclaration(fd FunctionDeclaration) wire.FunctionDeclaration {
	return wire.FunctionDeclaration{
		Name:        fd.Name,
		Description: fd.Description,
		Parameters:  toWireSchema(fd.Parameters),
		Response:    toWireSchema(fd.Response),
	}
}

func toWireTool(t Tool) wire.Tool {
	out := wire.Tool{}
	if len(t.FunctionDeclarations) > 0 {
		out.FunctionDeclarations = sliceutils.Map(t.FunctionDeclarations, toWireFunctionDeclaration)
	}
	if t.CodeExecution {
		out.CodeExecution = map[string]any{}
	}
	if t.URLContext {
		out.URLContext = map[string]any{}
	}
	if t.Retrieval != nil {
		out.Retrieval = map[string]any{"dataStoreIds": t.Retrieval.DataStoreIDs}
	}
	if t.ComputerUse != nil {
		out.ComputerUse = map[string]any{"environment": t.ComputerUse.Environment}
	}
	if t.GoogleSearch != nil {
		out.GoogleSearch = map[string]any{"excludeDomains": t.GoogleSearch.ExcludeDomains}
	}
	if t.Maps != nil {
		out.GoogleMaps = map[string]any{"enableWidget": t.Maps.EnableWidget}
	}
	if t.FileSearch != nil {
		out.FileSearch = map[string]any{"fileSearchStoreNames": t.FileSearch.FileSearchStoreNames}
	}
	return out
}

func toWireToolConfig(tc *ToolConfig) *wire.ToolConfig {
	if tc == nil {
		return nil
	}
	out := &wire.ToolConfig{StreamFunctionCallArguments: tc.StreamFunctionCallArguments}
	fc := &wire.FunctionCallingConfig{}
	switch tc.FunctionCalling.Mode {
	case ToolChoiceAuto, "":
		fc.Mode = "AUTO"
	case ToolChoiceNone:
		fc.Mode = "NONE"
	case ToolChoiceRequired:
		fc.Mode = "ANY"
	case ToolChoiceSpecific:
		fc.Mode = "ANY"
		fc.AllowedFunctionNames = tc.FunctionCalling.AllowedFunction
	}
	out.FunctionCallingConfig = fc
	return out
}

// BuildGenerateContentRequest translates a canonical GenerateRequest into
// its on-wire JSON body after running GenerateRequest.Validate. The body
// has the same shape for both dialects: d is not consulted, and no
// per-dialect field restrictions are applied here.
func BuildGenerateContentRequest(d Dialect, req *GenerateRequest) (*wire.GenerateContentRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out := &wire.GenerateContentRequest{
		Contents:      sliceutils.Map(req.Contents, toWireContent),
		CachedContent: req.CachedContentName,
		Labels:        req.Labels,
	}
	if req.SystemInstruction != nil {
		wc := toWireContent(*req.SystemInstruction)
		out.SystemInstruction = &wc
	}
	if req.GenerationConfig != nil {
		gc := req.GenerationConfig
		out.GenerationConfig = &wire.GenerationConfig{
			Temperature:      gc.Temperature,
			TopP:             gc.TopP,
			TopK:             gc.TopK,
			CandidateCount:   gc.CandidateCount,
			MaxOutputTokens:  gc.MaxOutputTokens,
			StopSequences:    gc.StopSequences,
			ResponseMimeType: gc.ResponseMimeType,
		}
		if gc.ResponseSchema != nil {
			out.GenerationConfig.ResponseJsonSchema = gc.ResponseSchema.asJSONSchema()
		}
	}
	if len(req.SafetySettings) > 0 {
		out.SafetySettings = sliceutils.Map(req.SafetySettings, func(s SafetySetting) wire.SafetySetting {
			return wire.SafetySetting{Category: s.Category, Threshold: s.Threshold}
		})
	}
	if len(req.Tools) > 0 {
		out.Tools = sliceutils.Map(req.Tools, toWireTool)
	}
	out.ToolConfig = toWireToolConfig(req.ToolConfig)
	return out, nil
}

// ParseGenerateContentResponse translates an on-wire response into the
// canonical GenerateResponse. Parsing is lenient: unknown fields are
// ignored and alternate field names are preserved by the JSON decoder.
func ParseGenerateContentResponse(resp *wire.GenerateContentResponse) (*GenerateResponse, error) {
	out := &GenerateResponse{
		PromptFeedback: resp.PromptFeedback,
		ModelVersion:   resp.ModelVersion,
		ResponseID:     resp.ResponseID,
	}
	out.Candidates = sliceutils.Map(resp.Candidates, func(c wire.Candidate) Candidate {
		return Candidate{
			Content:            fromWireContent(c.Content),
			FinishReason:       FinishReason(c.FinishReason),
			CitationMetadata:   c.CitationMetadata,
			GroundingMetadata:  c.GroundingMetadata,
			SafetyRatings:      c.SafetyRatings,
			URLContextMetadata: c.URLContextMetadata,
		}
	})
	if resp.UsageMetadata != nil {
		um := resp.UsageMetadata
		out.UsageMetadata = &UsageMetadata{
			PromptTokenCount:     um.PromptTokenCount,
			CandidatesTokenCount: um.CandidatesTokenCount,
			CachedTokenCount:     um.CachedContentTokenCount,
			ThoughtsTokenCount:   um.ThoughtsTokenCount,
			TotalTokenCount:      um.TotalTokenCount,
		}
	}
	return out, nil
}

// encodeBytesBase64/decodeBytesBase64 document the base64 wire policy:
// the canonical model keeps raw bytes, json.Marshal of a []byte
// field already encodes/decodes base64 per the stdlib's own convention,
// so no extra step is needed at the wire struct boundary. This helper
// exists only for the rare case a field must be embedded inside a JSON
// string rather than a []byte-typed field (e.g. within a map[string]any).
func encodeBytesBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeBytesBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return b, nil
}

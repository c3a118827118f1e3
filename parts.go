package genai

import "encoding/json"

// NewTextPart builds a text Part.
func NewTextPart(text string) Part {
	return Part{Text: &TextPartValue{Text: text}}
}

// NewInlineDataPart builds a raw-bytes Part tagged with its MIME type.
func NewInlineDataPart(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{MimeType: mimeType, Data: data}}
}

// NewFileDataPart builds a by-reference file Part.
func NewFileDataPart(uri, mimeType string) Part {
	return Part{FileData: &FileData{URI: uri, MimeType: mimeType}}
}

// FunctionCallOption configures a NewFunctionCallPart call.
type FunctionCallOption func(*FunctionCall)

func WithFunctionCallID(id string) FunctionCallOption {
	return func(fc *FunctionCall) { fc.ID = &id }
}

func WithWillContinue(willContinue bool) FunctionCallOption {
	return func(fc *FunctionCall) { fc.WillContinue = &willContinue }
}

// NewFunctionCallPart builds a function_call Part. args is marshaled to
// JSON; a marshal failure produces an empty args payload rather than a
// panic.
func NewFunctionCallPart(name string, args any, opts ...FunctionCallOption) Part {
	raw, _ := json.Marshal(args)
	fc := &FunctionCall{Name: &name, Args: raw}
	for _, opt := range opts {
		opt(fc)
	}
	return Part{FunctionCall: fc}
}

// FunctionResponseOption configures a NewFunctionResponsePart call.
type FunctionResponseOption func(*FunctionResponse)

func WithFunctionResponseID(id string) FunctionResponseOption {
	return func(fr *FunctionResponse) { fr.ID = &id }
}

func WithFunctionResponseParts(parts ...Part) FunctionResponseOption {
	return func(fr *FunctionResponse) { fr.Parts = parts }
}

func WithScheduling(scheduling string) FunctionResponseOption {
	return func(fr *FunctionResponse) { fr.Scheduling = &scheduling }
}

// NewFunctionResponsePart builds a function_response Part.
func NewFunctionResponsePart(name string, response any, opts ...FunctionResponseOption) Part {
	raw, _ := json.Marshal(response)
	fr := &FunctionResponse{Name: &name, Response: raw}
	for _, opt := range opts {
		opt(fr)
	}
	return Part{FunctionResponse: fr}
}

// NewExecutableCodePart builds an executable_code Part.
func NewExecutableCodePart(code, language string) Part {
	return Part{ExecutableCode: &ExecutableCode{Code: code, Language: language}}
}

// NewCodeExecutionResultPart builds a code_execution_result Part.
func NewCodeExecutionResultPart(outcome string, output *string) Part {
	return Part{CodeExecutionResult: &CodeExecutionResult{Outcome: outcome, Output: output}}
}

// PartOption applies an out-of-band attribute to any Part, regardless of
// variant (thought flag, thought signature, video metadata).
type PartOption func(*Part)

func WithThought(thought bool) PartOption {
	return func(p *Part) { p.Thought = thought }
}

func WithThoughtSignature(sig []byte) PartOption {
	return func(p *Part) { p.ThoughtSignature = sig }
}

func WithVideoMetadata(meta VideoMetadata) PartOption {
	return func(p *Part) { p.VideoMetadata = &meta }
}

// Apply runs the given PartOptions against p and returns it, letting
// callers chain e.g. NewTextPart("...").Apply(WithThought(true)).
func (p Part) Apply(opts ...PartOption) Part {
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewUserContent builds a user-role Content from the given parts.
func NewUserContent(parts ...Part) Content {
	return Content{Role: RoleUser, Parts: parts}
}

// NewModelContent builds a model-role Content from the given parts.
func NewModelContent(parts ...Part) Content {
	return Content{Role: RoleModel, Parts: parts}
}

// NewFunctionContent builds a function-role Content, used for the
// function-response turn the AFC driver synthesizes.
func NewFunctionContent(parts ...Part) Content {
	return Content{Role: RoleFunction, Parts: parts}
}

// NewUserText builds a single user text turn.
func NewUserText(text string) Content {
	return NewUserContent(NewTextPart(text))
}

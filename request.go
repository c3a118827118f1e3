package genai

// GenerationConfig carries the leaf sampling/output knobs a
// GenerateRequest may set. The leaf fields are not exhaustive of the
// on-wire surface. Extra holds additional keys, but
// BuildGenerateContentRequest does not copy it into the request body.
type GenerationConfig struct {
	Temperature      *float64
	TopP             *float64
	TopK             *float64
	CandidateCount   *int
	MaxOutputTokens  *int
	StopSequences    []string
	ResponseMimeType string
	ResponseSchema   *Schema
	Extra            map[string]any
}

// SafetySetting restricts content in a documented harm category.
type SafetySetting struct {
	Category  string
	Threshold string
}

// AutomaticFunctionCallingConfig is SDK-internal and never transmitted
// on the wire.
type AutomaticFunctionCallingConfig struct {
	Disable            bool
	MaximumRemoteCalls *int
	IgnoreCallHistory  bool
}

// ToolConfig carries the tool-choice and per-call function-calling knobs.
type ToolConfig struct {
	FunctionCalling             ToolChoice
	StreamFunctionCallArguments bool
}

// GenerateRequest is the canonical generate input: contents +
// optional system-instruction content + optional generation-config +
// optional safety settings OR model-armor config (mutually exclusive) +
// optional tool list + optional tool-config + optional cached-content
// reference + optional labels. AFC config is SDK-internal.
type GenerateRequest struct {
	Model             string
	Contents          []Content
	SystemInstruction *Content
	GenerationConfig  *GenerationConfig
	SafetySettings    []SafetySetting
	ModelArmorConfig  map[string]any // mutually exclusive with SafetySettings
	Tools             []Tool
	ToolConfig        *ToolConfig
	CachedContentName string
	Labels            map[string]string

	// AFC is never transmitted on the wire; see afc.go.
	AFC *AutomaticFunctionCallingConfig
}

// Validate enforces the SafetySettings/ModelArmorConfig mutual exclusion.
func (r *GenerateRequest) Validate() error {
	if len(r.SafetySettings) > 0 && len(r.ModelArmorConfig) > 0 {
		return NewInvalidConfigError("safety_settings and model_armor_config are mutually exclusive")
	}
	for _, t := range r.Tools {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FinishReason enumerates why a Candidate stopped generating.
type FinishReason string

// UsageDetails breaks usage down per modality/source.
type UsageDetails struct {
	TextTokens  int
	ImageTokens int
	AudioTokens int
	VideoTokens int
}

// UsageMetadata is the response-level token accounting.
type UsageMetadata struct {
	PromptTokenCount       int
	CandidatesTokenCount   int
	CachedTokenCount       int
	ThoughtsTokenCount     int
	TotalTokenCount        int
	PromptTokensDetails    *UsageDetails
	CandidateTokensDetails *UsageDetails
}

// Candidate is one generated alternative within a GenerateResponse.
type Candidate struct {
	Content            Content
	FinishReason       FinishReason
	CitationMetadata   map[string]any
	GroundingMetadata  map[string]any
	SafetyRatings      []map[string]any
	URLContextMetadata map[string]any
	LogProbsResult     map[string]any
}

// GenerateResponse is the canonical generate output.
type GenerateResponse struct {
	Candidates     []Candidate
	PromptFeedback map[string]any
	UsageMetadata  *UsageMetadata
	ModelVersion   string
	ResponseID     string

	// AFCHistory, when present, is a contiguous prefix containing the
	// original user contents followed by alternating model-tool-call /
	// function-response pairs.
	AFCHistory []Content
}

// Text concatenates the text of the first Candidate.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Text()
}

// FunctionCalls collects every FunctionCall part across every Candidate's
// Content, the extraction step the AFC driver performs each iteration.
func (r *GenerateResponse) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if p.FunctionCall != nil {
				calls = append(calls, *p.FunctionCall)
			}
		}
	}
	return calls
}

// Operation is a long-running operation handle. Response is
// unwrapped from a generateVideoResponse envelope by the dialect adapter
// before it reaches this struct.
type Operation struct {
	Name     string
	Done     bool
	Response map[string]any
	Error    map[string]any
}

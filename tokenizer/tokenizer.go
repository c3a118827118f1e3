// Package tokenizer implements local token estimation. An Estimator
// computes a token count for a content sequence entirely client-side, so
// a caller-supplied estimator can short-circuit a network count-tokens
// call.
package tokenizer

import (
	"encoding/json"

	"github.com/google-gemini/genai-go"
)

// Estimator computes a non-negative token count for an ordered Content
// sequence. Estimates are deterministic for a given input.
type Estimator interface {
	EstimateTokens(contents []genai.Content) int
}

// Heuristic is the byte-based estimator: sum of text byte counts,
// inline/file-data byte counts, function-call/response name byte counts,
// and executable-code/code-execution-output byte counts, divided by 4
// and rounded up.
type Heuristic struct{}

var _ Estimator = Heuristic{}

func (Heuristic) EstimateTokens(contents []genai.Content) int {
	var bytes int
	for _, content := range contents {
		for _, part := range content.Parts {
			bytes += partByteCount(part)
		}
	}
	return (bytes + 3) / 4
}

func partByteCount(part genai.Part) int {
	switch {
	case part.Text != nil:
		return len(part.Text.Text)
	case part.InlineData != nil:
		return len(part.InlineData.Data)
	case part.FileData != nil:
		return len(part.FileData.URI)
	case part.FunctionCall != nil:
		if part.FunctionCall.Name != nil {
			return len(*part.FunctionCall.Name)
		}
	case part.FunctionResponse != nil:
		if part.FunctionResponse.Name != nil {
			return len(*part.FunctionResponse.Name)
		}
	case part.ExecutableCode != nil:
		return len(part.ExecutableCode.Code)
	case part.CodeExecutionResult != nil:
		if part.CodeExecutionResult.Output != nil {
			return len(*part.CodeExecutionResult.Output)
		}
	}
	return 0
}

// CountTokensConfig carries the optional system instruction, tools, and
// generation config a count-tokens call folds into the estimated text.
type CountTokensConfig struct {
	SystemInstruction *genai.Content
	Tools             []genai.Tool
	GenerationConfig  *genai.GenerationConfig
}

// BuildEstimationContents appends the system instruction (if any) to
// contents, then accumulates every text-bearing leaf reachable from
// function calls/responses already in contents plus the tool declarations
// and generation config's response schema, appending one synthetic text
// Content per leaf.
func BuildEstimationContents(contents []genai.Content, cfg CountTokensConfig) []genai.Content {
	combined := make([]genai.Content, 0, len(contents)+1)
	combined = append(combined, contents...)
	if cfg.SystemInstruction != nil {
		combined = append(combined, *cfg.SystemInstruction)
	}

	var acc textAccumulator
	acc.addFunctionTextsFromContents(combined)
	acc.addTools(cfg.Tools)
	acc.addGenerationConfig(cfg.GenerationConfig)

	for _, text := range acc.texts {
		combined = append(combined, genai.NewUserText(text))
	}
	return combined
}

// textAccumulator collects every string leaf reachable from tool
// declarations, schemas, and function-call/response payloads.
type textAccumulator struct {
	texts []string
}

func (a *textAccumulator) push(value string) {
	if value != "" {
		a.texts = append(a.texts, value)
	}
}

func (a *textAccumulator) addFunctionTextsFromContents(contents []genai.Content) {
	for _, content := range contents {
		for _, part := range content.Parts {
			switch {
			case part.FunctionCall != nil:
				a.addFunctionCall(part.FunctionCall)
			case part.FunctionResponse != nil:
				a.addFunctionResponse(part.FunctionResponse)
			}
		}
	}
}

func (a *textAccumulator) addFunctionCall(call *genai.FunctionCall) {
	if call.Name != nil {
		a.push(*call.Name)
	}
	a.addJSON(call.Args)
}

func (a *textAccumulator) addFunctionResponse(resp *genai.FunctionResponse) {
	if resp.Name != nil {
		a.push(*resp.Name)
	}
	a.addJSON(resp.Response)
}

func (a *textAccumulator) addTools(tools []genai.Tool) {
	for _, tool := range tools {
		for _, decl := range tool.FunctionDeclarations {
			a.addFunctionDeclaration(decl)
		}
	}
}

func (a *textAccumulator) addFunctionDeclaration(decl genai.FunctionDeclaration) {
	a.push(decl.Name)
	a.push(decl.Description)
	a.addSchema(decl.Parameters)
	a.addSchema(decl.Response)
}

func (a *textAccumulator) addGenerationConfig(cfg *genai.GenerationConfig) {
	if cfg == nil {
		return
	}
	a.addSchema(cfg.ResponseSchema)
}

func (a *textAccumulator) addSchema(schema *genai.Schema) {
	if schema == nil {
		return
	}
	a.push(schema.Format)
	a.push(schema.Description)
	for _, v := range schema.EnumValues {
		a.push(v)
	}
	for _, v := range schema.Required {
		a.push(v)
	}
	for k, v := range schema.Properties {
		a.push(k)
		a.addSchema(v)
	}
	a.addSchema(schema.Items)
	for _, v := range schema.AnyOf {
		a.addSchema(v)
	}
	a.addJSON(schema.Example)
	a.addJSON(schema.Default)
}

func (a *textAccumulator) addJSON(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	a.addJSONValue(v)
}

func (a *textAccumulator) addJSONValue(v any) {
	switch value := v.(type) {
	case string:
		a.push(value)
	case []any:
		for _, item := range value {
			a.addJSONValue(item)
		}
	case map[string]any:
		for k, item := range value {
			a.push(k)
			a.addJSONValue(item)
		}
	}
}

package genai

import "strings"

// thinkingModel reports whether modelID belongs to the "thinking" model
// family (the 3-pro-preview and explicit thinking series).
func thinkingModel(modelID string) bool {
	return strings.Contains(modelID, "3-pro-preview") || strings.Contains(modelID, "thinking")
}

// functionResponseMediaAllowedModels documents the subset of model
// families permitted to receive inline/file media inside a function
// response. Expressed as a substring allowlist, the same shape as the
// thinking-model check above.
var functionResponseMediaAllowedModels = []string{"2.5", "3-pro"}

func functionResponseMediaAllowed(modelID string) bool {
	for _, allowed := range functionResponseMediaAllowedModels {
		if strings.Contains(modelID, allowed) {
			return true
		}
	}
	return false
}

// ValidateRequest runs the capability pre-flight rules against req
// before any outbound request is issued.
func ValidateRequest(req *GenerateRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := validateTemperatureRange(req); err != nil {
		return err
	}
	if err := validateThoughtSignatureContinuity(req); err != nil {
		return err
	}
	if err := validateFunctionResponseMedia(req); err != nil {
		return err
	}
	if err := validateCodeExecutionImageConflict(req); err != nil {
		return err
	}
	return nil
}

// validateTemperatureRange enforces rule 1: thinking models must have
// temperature in [0, 2] if set.
func validateTemperatureRange(req *GenerateRequest) error {
	if !thinkingModel(req.Model) || req.GenerationConfig == nil || req.GenerationConfig.Temperature == nil {
		return nil
	}
	t := *req.GenerationConfig.Temperature
	if t < 0 || t > 2 {
		return NewInvalidConfigError("temperature must be in [0, 2] for thinking models")
	}
	return nil
}

// validateThoughtSignatureContinuity enforces rule 2: for thinking
// models, any model turn containing a function-call part must carry a
// non-empty thought_signature on some part of that turn.
func validateThoughtSignatureContinuity(req *GenerateRequest) error {
	if !thinkingModel(req.Model) {
		return nil
	}
	for _, content := range req.Contents {
		if content.Role != RoleModel {
			continue
		}
		hasCall := false
		hasSignature := false
		for _, p := range content.Parts {
			if p.FunctionCall != nil {
				hasCall = true
			}
			if len(p.ThoughtSignature) > 0 {
				hasSignature = true
			}
		}
		if hasCall && !hasSignature {
			return NewMissingThoughtSignatureError(req.Model)
		}
	}
	return nil
}

// validateFunctionResponseMedia enforces rule 3: function-response parts
// carrying inline or file media are only permitted for a documented
// subset of model families.
func validateFunctionResponseMedia(req *GenerateRequest) error {
	if functionResponseMediaAllowed(req.Model) {
		return nil
	}
	for _, content := range req.Contents {
		for _, p := range content.Parts {
			if p.FunctionResponse == nil {
				continue
			}
			for _, rp := range p.FunctionResponse.Parts {
				if rp.InlineData != nil || rp.FileData != nil {
					return NewInvalidConfigError("function-response media is not supported for model " + req.Model)
				}
			}
		}
	}
	return nil
}

// validateCodeExecutionImageConflict enforces rule 4: if tools include
// code-execution AND any user content contains an inline- or file-data
// image part, reject.
func validateCodeExecutionImageConflict(req *GenerateRequest) error {
	hasCodeExecution := false
	for _, t := range req.Tools {
		if t.CodeExecution {
			hasCodeExecution = true
			break
		}
	}
	if !hasCodeExecution {
		return nil
	}
	for _, content := range req.Contents {
		if content.Role != RoleUser {
			continue
		}
		for _, p := range content.Parts {
			if isImagePart(p) {
				return NewInvalidConfigError("code-execution tool cannot be combined with image input")
			}
		}
	}
	return nil
}

func isImagePart(p Part) bool {
	if p.InlineData != nil && strings.HasPrefix(p.InlineData.MimeType, "image/") {
		return true
	}
	if p.FileData != nil && strings.HasPrefix(p.FileData.MimeType, "image/") {
		return true
	}
	return false
}

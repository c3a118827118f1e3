// Package dialect implements C3: bidirectional translation between the
// canonical request/response model and each backend's on-wire form, plus
// URL construction and naming normalisation.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect identifies which backend surface a Client targets.
type Dialect string

const (
	GeminiAPI Dialect = "gemini-api"
	Vertex    Dialect = "vertex"
)

// DefaultBaseURL and DefaultAPIVersion return each dialect's defaults.
func DefaultBaseURL(d Dialect, location string) string {
	switch d {
	case Vertex:
		if location == "" {
			location = "us-central1"
		}
		return fmt.Sprintf("https://%s-aiplatform.googleapis.com", location)
	default:
		return "https://generativelanguage.googleapis.com"
	}
}

func DefaultAPIVersion(d Dialect) string {
	switch d {
	case Vertex:
		return "v1beta1"
	default:
		return "v1beta"
	}
}

// resourcePrefixForModel returns the Gemini-API style resource prefix ("models/",
// "tunedModels/", etc.) for a bare model-like id. Vertex builds its own
// publishers/google/models/ prefix via BuildURL below.
func resourcePrefixForModel(modelID string) string {
	if strings.HasPrefix(modelID, "tunedModels/") || strings.Contains(modelID, "/") {
		return ""
	}
	if strings.HasPrefix(modelID, "tuned-") {
		return "tunedModels/"
	}
	return "models/"
}

// BuildURL constructs the on-wire URL for a model-scoped method using
// the dialect-aware templates:
//
//	Gemini-API: {base}/{version}/{resource_path}
//	Vertex:     {base}/{version}/projects/{project}/locations/{location}/{resource_path}
//	            where models further carry publishers/google/models/.
func BuildURL(d Dialect, baseURL, apiVersion, project, location, modelID, method string, query string) (string, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	var resourcePath string

	switch d {
	case Vertex:
		if project == "" || location == "" {
			return "", fmt.Errorf("vertex dialect requires project and location")
		}
		resourcePath = fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s:%s", project, location, modelID, method)
	default:
		resourcePath = fmt.Sprintf("%s%s:%s", resourcePrefixForModel(modelID), modelID, method)
	}

	url := fmt.Sprintf("%s/%s/%s", baseURL, apiVersion, resourcePath)
	if query != "" {
		url += "?" + query
	}
	return url, nil
}

// BuildResourceURL constructs the URL for a non-model resource
// (files/{id}, cachedContents/{id}, etc.) rooted the same way as
// BuildURL but without a model-specific prefix.
func BuildResourceURL(d Dialect, baseURL, apiVersion, project, location, resourcePath string) (string, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	switch d {
	case Vertex:
		if project == "" || location == "" {
			return "", fmt.Errorf("vertex dialect requires project and location")
		}
		return fmt.Sprintf("%s/%s/projects/%s/locations/%s/%s", baseURL, apiVersion, project, location, resourcePath), nil
	default:
		return fmt.Sprintf("%s/%s/%s", baseURL, apiVersion, resourcePath), nil
	}
}

// BuildUploadURL constructs the resumable-upload start URL, which
// carries an extra "upload/" path segment before the API version that
// BuildResourceURL's templates don't have.
func BuildUploadURL(d Dialect, baseURL, apiVersion, project, location, resourcePath string) (string, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	switch d {
	case Vertex:
		if project == "" || location == "" {
			return "", fmt.Errorf("vertex dialect requires project and location")
		}
		return fmt.Sprintf("%s/upload/%s/projects/%s/locations/%s/%s", baseURL, apiVersion, project, location, resourcePath), nil
	default:
		return fmt.Sprintf("%s/upload/%s/%s", baseURL, apiVersion, resourcePath), nil
	}
}

// NormalizeCacheModel maps a bare/partial model id into the fully
// qualified form Caches.Create's body expects.
func NormalizeCacheModel(d Dialect, project, location, model string) (string, error) {
	switch d {
	case Vertex:
		if project == "" || location == "" {
			return "", fmt.Errorf("vertex dialect requires project and location")
		}
		switch {
		case strings.HasPrefix(model, "projects/"):
			return model, nil
		case strings.HasPrefix(model, "publishers/"):
			return fmt.Sprintf("projects/%s/locations/%s/%s", project, location, model), nil
		case strings.HasPrefix(model, "models/"):
			return fmt.Sprintf("projects/%s/locations/%s/publishers/google/%s", project, location, model), nil
		default:
			if publisher, name, ok := strings.Cut(model, "/"); ok {
				return fmt.Sprintf("projects/%s/locations/%s/publishers/%s/models/%s", project, location, publisher, name), nil
			}
			return fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", project, location, model), nil
		}
	default:
		if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
			return model, nil
		}
		return "models/" + model, nil
	}
}

// NormalizeCachedContentName maps a bare/partial cache name into the
// fully qualified resource name.
func NormalizeCachedContentName(d Dialect, project, location, name string) (string, error) {
	switch d {
	case Vertex:
		if project == "" || location == "" {
			return "", fmt.Errorf("vertex dialect requires project and location")
		}
		switch {
		case strings.HasPrefix(name, "projects/"):
			return name, nil
		case strings.HasPrefix(name, "locations/"):
			return fmt.Sprintf("projects/%s/%s", project, name), nil
		case strings.HasPrefix(name, "cachedContents/"):
			return fmt.Sprintf("projects/%s/locations/%s/%s", project, location, name), nil
		default:
			return fmt.Sprintf("projects/%s/locations/%s/cachedContents/%s", project, location, name), nil
		}
	default:
		if strings.HasPrefix(name, "cachedContents/") {
			return name, nil
		}
		return "cachedContents/" + name, nil
	}
}

// NormalizeBatchModel maps a bare/partial model id into the form
// Batches.Create expects.
func NormalizeBatchModel(d Dialect, model string) (string, error) {
	switch d {
	case Vertex:
		if strings.HasPrefix(model, "projects/") || strings.HasPrefix(model, "publishers/") || strings.HasPrefix(model, "models/") {
			return model, nil
		}
		if publisher, name, ok := strings.Cut(model, "/"); ok {
			return fmt.Sprintf("publishers/%s/models/%s", publisher, name), nil
		}
		return fmt.Sprintf("publishers/google/models/%s", model), nil
	default:
		if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
			return model, nil
		}
		return "models/" + model, nil
	}
}

// NormalizeBatchJobName maps a bare/partial batch name into the fully
// qualified resource name.
func NormalizeBatchJobName(d Dialect, project, location, name string) (string, error) {
	switch d {
	case Vertex:
		if project == "" || location == "" {
			return "", fmt.Errorf("vertex dialect requires project and location")
		}
		switch {
		case strings.HasPrefix(name, "projects/"):
			return name, nil
		case strings.HasPrefix(name, "locations/"):
			return fmt.Sprintf("projects/%s/%s", project, name), nil
		case strings.HasPrefix(name, "batchPredictionJobs/"):
			return fmt.Sprintf("projects/%s/locations/%s/%s", project, location, name), nil
		default:
			return fmt.Sprintf("projects/%s/locations/%s/batchPredictionJobs/%s", project, location, name), nil
		}
	default:
		if strings.HasPrefix(name, "batches/") {
			return name, nil
		}
		return "batches/" + name, nil
	}
}

// NormalizeTuningModel maps a bare/partial model id into the form
// Tunings.Create's base_model field expects.
func NormalizeTuningModel(d Dialect, model string) string {
	if d == Vertex {
		if strings.HasPrefix(model, "projects/") || strings.HasPrefix(model, "publishers/") {
			return model
		}
		return "publishers/google/models/" + model
	}
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model
	}
	return "models/" + model
}

// NormalizeTuningJobName maps a bare/partial tuning job name into the
// fully qualified resource name.
func NormalizeTuningJobName(d Dialect, project, location, name string) (string, error) {
	switch d {
	case Vertex:
		if project == "" || location == "" {
			return "", fmt.Errorf("vertex dialect requires project and location")
		}
		switch {
		case strings.HasPrefix(name, "projects/"):
			return name, nil
		case strings.HasPrefix(name, "tuningJobs/"):
			return fmt.Sprintf("projects/%s/locations/%s/%s", project, location, name), nil
		default:
			return fmt.Sprintf("projects/%s/locations/%s/tuningJobs/%s", project, location, name), nil
		}
	default:
		if strings.HasPrefix(name, "tunedModels/") {
			return name, nil
		}
		return "tunedModels/" + name, nil
	}
}

// GeminiAPIOnlyResources and VertexOnlyResources enforce the pre-flight
// resource-availability restrictions: FileSearchStores, Files, and
// ephemeral-token creation exist on the Gemini API only; computeTokens
// and image editing/recontext/segmentation/upscale are Vertex-only.
var GeminiAPIOnlyResources = map[string]bool{
	"fileSearchStores": true,
	"files":            true,
	"authTokens":       true,
}

var VertexOnlyResources = map[string]bool{
	"computeTokens":      true,
	"imageEdit":          true,
	"imageRecontext":     true,
	"imageSegmentation":  true,
	"imageUpscale":       true,
}

// CheckResourceAvailable enforces the table above.
func CheckResourceAvailable(d Dialect, resource string) error {
	if GeminiAPIOnlyResources[resource] && d != GeminiAPI {
		return fmt.Errorf("resource %q is only available on the Gemini-API dialect", resource)
	}
	if VertexOnlyResources[resource] && d != Vertex {
		return fmt.Errorf("resource %q is only available on the Vertex dialect", resource)
	}
	return nil
}

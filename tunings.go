package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google-gemini/genai-go/internal/dialect"
)

// TuningJob is the Tunings resource. Many hyperparameters are
// dialect-specific and the tuning spec key switches between supervised
// and preference variants, so the per-dialect spec body is kept as a raw
// map rather than a single flat struct.
type TuningJob struct {
	Name           string
	State          JobState
	CreateTime     string
	StartTime      string
	EndTime        string
	UpdateTime     string
	BaseModel      string
	TunedModelName string
	Error          map[string]any
	Experiment     string
}

type tuningJobWire struct {
	Name           string         `json:"name,omitempty"`
	State          string         `json:"state,omitempty"`
	CreateTime     string         `json:"createTime,omitempty"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	UpdateTime     string         `json:"updateTime,omitempty"`
	BaseModel      string         `json:"baseModel,omitempty"`
	TunedModel     map[string]any `json:"tunedModel,omitempty"`
	TunedModelName string         `json:"tunedModelDisplayName,omitempty"`
	Error          map[string]any `json:"error,omitempty"`
	Experiment     string         `json:"experiment,omitempty"`
}

func (j *TuningJob) fromWire(w tuningJobWire) {
	j.Name = w.Name
	j.State = JobState(w.State)
	j.CreateTime = w.CreateTime
	j.StartTime = w.StartTime
	j.EndTime = w.EndTime
	j.UpdateTime = w.UpdateTime
	j.BaseModel = w.BaseModel
	j.Error = w.Error
	j.Experiment = w.Experiment
	if w.TunedModel != nil {
		j.TunedModelName = asString(w.TunedModel, "model")
	} else {
		j.TunedModelName = w.TunedModelName
	}
}

// TuningSpec carries the hyperparameters and training/validation data for
// a tuning job. Which fields apply depends on both the dialect and the
// supervised vs. preference variant.
type TuningSpec struct {
	// Preference selects the preference-tuning spec key instead of the
	// default supervised one.
	Preference bool

	TrainingDatasetURI     string
	ValidationDatasetURI   string
	Epochs                 *int
	LearningRateMultiplier *float64
	AdapterSize            string
	BatchSize              *int
	LearningRate           *float64
}

func (s TuningSpec) toWire() map[string]any {
	spec := map[string]any{}
	if s.TrainingDatasetURI != "" {
		spec["trainingDatasetUri"] = s.TrainingDatasetURI
	}
	if s.ValidationDatasetURI != "" {
		spec["validationDatasetUri"] = s.ValidationDatasetURI
	}
	hyper := map[string]any{}
	if s.Epochs != nil {
		hyper["epochCount"] = *s.Epochs
	}
	if s.LearningRateMultiplier != nil {
		hyper["learningRateMultiplier"] = *s.LearningRateMultiplier
	}
	if s.AdapterSize != "" {
		hyper["adapterSize"] = s.AdapterSize
	}
	if s.BatchSize != nil {
		hyper["batchSize"] = *s.BatchSize
	}
	if s.LearningRate != nil {
		hyper["learningRate"] = *s.LearningRate
	}
	if len(hyper) > 0 {
		spec["hyperParameters"] = hyper
	}
	return spec
}

// specKey returns the variant-specific body key (supervised or
// preference) the tuning spec is nested under.
func (s TuningSpec) specKey() string {
	if s.Preference {
		return "preferenceTuningSpec"
	}
	return "supervisedTuningSpec"
}

// CreateTuningJobConfig carries the creation body.
type CreateTuningJobConfig struct {
	DisplayName string
	Spec        TuningSpec
}

// CreateTuningJob creates a tuning job bound to baseModel. The
// base-model name is normalized per-dialect and the tuning spec is
// nested under the variant-specific key
// (supervisedTuningSpec/preferenceTuningSpec).
func (c *Client) CreateTuningJob(ctx context.Context, baseModel string, cfg CreateTuningJobConfig) (*TuningJob, error) {
	qualifiedModel := dialect.NormalizeTuningModel(c.dialect, baseModel)

	body := map[string]any{
		"baseModel":    qualifiedModel,
		cfg.Spec.specKey(): cfg.Spec.toWire(),
	}
	if cfg.DisplayName != "" {
		if c.dialect == dialect.Vertex {
			body["tunedModelDisplayName"] = cfg.DisplayName
		} else {
			body["displayName"] = cfg.DisplayName
		}
	}

	var createURL string
	var err error
	if c.dialect == dialect.Vertex {
		createURL, err = c.buildResourceURL("tuningJobs", nil)
	} else {
		createURL, err = c.buildResourceURL("tunedModels", nil)
	}
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	resp, err := c.send(ctx, "POST", createURL, body, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	var w tuningJobWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding tuning job: %s", err))
	}
	var job TuningJob
	job.fromWire(w)
	return &job, nil
}

// GetTuningJob fetches a tuning job's current status by name.
func (c *Client) GetTuningJob(ctx context.Context, name string) (*TuningJob, error) {
	qualified, err := dialect.NormalizeTuningJobName(c.dialect, c.project, c.location, name)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	getURL, err := c.buildResourceURL(qualified, nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[tuningJobWire](ctx, c, "GET", getURL, nil, nil)
	if err != nil {
		return nil, err
	}
	var job TuningJob
	job.fromWire(*wireResp)
	return &job, nil
}

// CancelTuningJob cancels a running tuning job (Vertex only; Gemini-API
// tuning jobs have no cancel endpoint).
func (c *Client) CancelTuningJob(ctx context.Context, name string) error {
	if c.dialect != dialect.Vertex {
		return NewInvalidConfigError("cancel is only supported for Vertex tuning jobs")
	}
	qualified, err := dialect.NormalizeTuningJobName(c.dialect, c.project, c.location, name)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	cancelURL, err := c.buildResourceURL(qualified+":cancel", nil)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	resp, err := c.send(ctx, "POST", cancelURL, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// DeleteTuningJob deletes a tuning job's bookkeeping record.
func (c *Client) DeleteTuningJob(ctx context.Context, name string) error {
	qualified, err := dialect.NormalizeTuningJobName(c.dialect, c.project, c.location, name)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	deleteURL, err := c.buildResourceURL(qualified, nil)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	resp, err := c.send(ctx, "DELETE", deleteURL, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ListTuningJobsConfig carries pagination parameters.
type ListTuningJobsConfig struct {
	PageSize  *int
	PageToken string
}

// ListTuningJobsResponse is one page of tuning jobs.
type ListTuningJobsResponse struct {
	TuningJobs    []TuningJob
	NextPageToken string
}

// ListTuningJobs returns one page of tuning jobs.
func (c *Client) ListTuningJobs(ctx context.Context, cfg ListTuningJobsConfig) (*ListTuningJobsResponse, error) {
	var listURL string
	var err error
	if c.dialect == dialect.Vertex {
		listURL, err = c.buildResourceURL("tuningJobs", nil)
	} else {
		listURL, err = c.buildResourceURL("tunedModels", nil)
	}
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	listURL = appendListQuery(listURL, cfg.PageSize, cfg.PageToken)

	resp, err := c.send(ctx, "GET", listURL, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding tuning job list: %s", err))
	}

	out := &ListTuningJobsResponse{NextPageToken: asString(value, "nextPageToken")}
	key := "tunedModels"
	if c.dialect == dialect.Vertex {
		key = "tuningJobs"
	}
	if items, ok := value[key].([]any); ok {
		for _, it := range items {
			raw, err := json.Marshal(it)
			if err != nil {
				continue
			}
			var w tuningJobWire
			if err := json.Unmarshal(raw, &w); err != nil {
				continue
			}
			var job TuningJob
			job.fromWire(w)
			out.TuningJobs = append(out.TuningJobs, job)
		}
	}
	return out, nil
}

// AllTuningJobs pages through every tuning job.
func (c *Client) AllTuningJobs(ctx context.Context, cfg ListTuningJobsConfig) ([]TuningJob, error) {
	var out []TuningJob
	for {
		page, err := c.ListTuningJobs(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, page.TuningJobs...)
		if page.NextPageToken == "" {
			return out, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}

package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google-gemini/genai-go/internal/dialect"
)

// JobState is the state of a Batches or Tunings long-running job.
type JobState string

const (
	JobStateUnspecified        JobState = "JOB_STATE_UNSPECIFIED"
	JobStateQueued             JobState = "JOB_STATE_QUEUED"
	JobStatePending            JobState = "JOB_STATE_PENDING"
	JobStateRunning            JobState = "JOB_STATE_RUNNING"
	JobStateSucceeded          JobState = "JOB_STATE_SUCCEEDED"
	JobStateFailed             JobState = "JOB_STATE_FAILED"
	JobStateCancelling         JobState = "JOB_STATE_CANCELLING"
	JobStateCancelled          JobState = "JOB_STATE_CANCELLED"
	JobStatePaused             JobState = "JOB_STATE_PAUSED"
	JobStateExpired            JobState = "JOB_STATE_EXPIRED"
	JobStateUpdating           JobState = "JOB_STATE_UPDATING"
	JobStatePartiallySucceeded JobState = "JOB_STATE_PARTIALLY_SUCCEEDED"
)

// BatchJobSource is the input side of a batch job: Gemini-API batches take
// a file_name or inlined_requests, Vertex batches take a format plus
// gcs_uri/bigquery_uri. The two sets are mutually exclusive per dialect.
type BatchJobSource struct {
	FileName        string
	InlinedRequests []InlinedRequest
	Format          string
	GCSURI          []string
	BigQueryURI     string
}

// InlinedRequest is one request embedded directly in a Gemini-API batch
// job's inlined_requests.
type InlinedRequest struct {
	Model    string
	Contents []Content
	Config   *GenerationConfig
	Metadata map[string]any
}

// BatchJobDestination is the output side of a batch job.
type BatchJobDestination struct {
	FileName                     string
	InlinedResponses             []map[string]any
	InlinedEmbedContentResponses []map[string]any
	Format                       string
	GCSURI                       string
	BigQueryURI                  string
}

// BatchJob is the Batches resource.
type BatchJob struct {
	Name            string
	DisplayName     string
	State           JobState
	Error           map[string]any
	CreateTime      string
	StartTime       string
	EndTime         string
	UpdateTime      string
	Model           string
	Src             *BatchJobSource
	Dest            *BatchJobDestination
	CompletionStats map[string]any
}

// CreateBatchJobConfig carries the creation body.
type CreateBatchJobConfig struct {
	DisplayName string
	Dest        *BatchJobDestination
}

// normalizeBatchModel relocates model normalisation to the dialect
// package's shared rule.
func (c *Client) normalizeBatchModel(model string) (string, error) {
	return dialect.NormalizeBatchModel(c.dialect, model)
}

func buildInlinedRequestBody(c *Client, req InlinedRequest) (map[string]any, error) {
	inner := map[string]any{}
	if req.Model != "" {
		model, err := c.normalizeBatchModel(req.Model)
		if err != nil {
			return nil, err
		}
		inner["model"] = model
	}
	if len(req.Contents) > 0 {
		inner["contents"] = req.Contents
	}
	if req.Config != nil {
		inner["generationConfig"] = req.Config
	}
	entry := map[string]any{"request": inner}
	if req.Metadata != nil {
		entry["metadata"] = req.Metadata
	}
	return entry, nil
}

func buildGeminiBatchBody(c *Client, src BatchJobSource, cfg CreateBatchJobConfig) (map[string]any, error) {
	if cfg.Dest != nil {
		return nil, fmt.Errorf("dest is not supported in Gemini batch API")
	}
	if src.Format != "" || len(src.GCSURI) > 0 || src.BigQueryURI != "" {
		return nil, fmt.Errorf("format/gcs_uri/bigquery_uri are not supported in Gemini batch API")
	}
	inputConfig := map[string]any{}
	if src.FileName != "" {
		inputConfig["fileName"] = src.FileName
	}
	if len(src.InlinedRequests) > 0 {
		requests := make([]map[string]any, 0, len(src.InlinedRequests))
		for _, req := range src.InlinedRequests {
			entry, err := buildInlinedRequestBody(c, req)
			if err != nil {
				return nil, err
			}
			requests = append(requests, entry)
		}
		inputConfig["requests"] = map[string]any{"requests": requests}
	}
	if len(inputConfig) == 0 {
		return nil, fmt.Errorf("BatchJobSource requires file_name or inlined_requests")
	}
	batch := map[string]any{"inputConfig": inputConfig}
	if cfg.DisplayName != "" {
		batch["displayName"] = cfg.DisplayName
	}
	return map[string]any{"batch": batch}, nil
}

func buildVertexInputConfig(src BatchJobSource) (map[string]any, error) {
	if src.FileName != "" || len(src.InlinedRequests) > 0 {
		return nil, fmt.Errorf("file_name/inlined_requests are not supported in Vertex batch API")
	}
	config := map[string]any{}
	if src.Format != "" {
		config["instancesFormat"] = src.Format
	}
	if len(src.GCSURI) > 0 {
		config["gcsSource"] = map[string]any{"uris": src.GCSURI}
	}
	if src.BigQueryURI != "" {
		config["bigquerySource"] = map[string]any{"inputUri": src.BigQueryURI}
	}
	if len(config) == 0 {
		return nil, fmt.Errorf("BatchJobSource requires format + gcs_uri/bigquery_uri for Vertex")
	}
	return config, nil
}

func buildVertexOutputConfig(dest BatchJobDestination) (map[string]any, error) {
	if dest.FileName != "" || dest.InlinedResponses != nil || dest.InlinedEmbedContentResponses != nil {
		return nil, fmt.Errorf("file_name/inlined_responses are not supported in Vertex batch API")
	}
	config := map[string]any{}
	if dest.Format != "" {
		config["predictionsFormat"] = dest.Format
	}
	if dest.GCSURI != "" {
		config["gcsDestination"] = map[string]any{"outputUriPrefix": dest.GCSURI}
	}
	if dest.BigQueryURI != "" {
		config["bigqueryDestination"] = map[string]any{"outputUri": dest.BigQueryURI}
	}
	if len(config) == 0 {
		return nil, fmt.Errorf("BatchJobDestination requires format + gcs_uri/bigquery_uri for Vertex")
	}
	return config, nil
}

func buildVertexBatchBody(model string, src BatchJobSource, cfg CreateBatchJobConfig) (map[string]any, error) {
	inputConfig, err := buildVertexInputConfig(src)
	if err != nil {
		return nil, err
	}
	if cfg.Dest == nil {
		return nil, fmt.Errorf("dest is required for Vertex batch API")
	}
	outputConfig, err := buildVertexOutputConfig(*cfg.Dest)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"model":        model,
		"inputConfig":  inputConfig,
		"outputConfig": outputConfig,
	}
	if cfg.DisplayName != "" {
		body["displayName"] = cfg.DisplayName
	}
	return body, nil
}

// CreateBatchJob creates a batch job bound to model, with src/cfg fields
// restricted per-dialect: Gemini-API takes file_name/inlined
// requests and rejects dest; Vertex takes format+gcs/bigquery uris on both
// source and destination.
func (c *Client) CreateBatchJob(ctx context.Context, model string, src BatchJobSource, cfg CreateBatchJobConfig) (*BatchJob, error) {
	qualifiedModel, err := c.normalizeBatchModel(model)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	var body map[string]any
	var createURL string
	if c.dialect == dialect.Vertex {
		body, err = buildVertexBatchBody(qualifiedModel, src, cfg)
		if err != nil {
			return nil, NewInvalidConfigError(err.Error())
		}
		createURL, err = c.buildResourceURL("batchPredictionJobs", nil)
	} else {
		body, err = buildGeminiBatchBody(c, src, cfg)
		if err != nil {
			return nil, NewInvalidConfigError(err.Error())
		}
		createURL, err = c.buildResourceURL(fmt.Sprintf("%s:batchGenerateContent", qualifiedModel), nil)
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
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding batch job: %s", err))
	}
	return parseBatchJobResponse(c.dialect, value), nil
}

func parseBatchJobResponse(d dialect.Dialect, value map[string]any) *BatchJob {
	if d == dialect.Vertex {
		return parseBatchJobFromVertex(value)
	}
	return parseBatchJobFromMLDev(value)
}

func asString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func asObject(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func parseBatchJobFromMLDev(value map[string]any) *BatchJob {
	batch := &BatchJob{Name: asString(value, "name")}
	metadata := asObject(value, "metadata")
	if metadata == nil {
		return batch
	}
	batch.DisplayName = asString(metadata, "displayName")
	if s := asString(metadata, "state"); s != "" {
		batch.State = JobState(s)
	}
	batch.CreateTime = asString(metadata, "createTime")
	batch.EndTime = asString(metadata, "endTime")
	batch.UpdateTime = asString(metadata, "updateTime")
	batch.Model = asString(metadata, "model")
	if output := asObject(metadata, "output"); output != nil {
		batch.Dest = parseBatchDestinationFromMLDev(output)
	}
	return batch
}

func parseBatchDestinationFromMLDev(output map[string]any) *BatchJobDestination {
	dest := &BatchJobDestination{FileName: asString(output, "responsesFile")}
	if inlined := asObject(output, "inlinedResponses"); inlined != nil {
		if items, ok := inlined["inlinedResponses"].([]any); ok {
			dest.InlinedResponses = toMapSlice(items)
		}
	}
	if inlined := asObject(output, "inlinedEmbedContentResponses"); inlined != nil {
		if items, ok := inlined["inlinedResponses"].([]any); ok {
			dest.InlinedEmbedContentResponses = toMapSlice(items)
		}
	}
	return dest
}

func toMapSlice(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func parseBatchJobFromVertex(value map[string]any) *BatchJob {
	batch := &BatchJob{
		Name:        asString(value, "name"),
		DisplayName: asString(value, "displayName"),
		CreateTime:  asString(value, "createTime"),
		StartTime:   asString(value, "startTime"),
		EndTime:     asString(value, "endTime"),
		UpdateTime:  asString(value, "updateTime"),
		Model:       asString(value, "model"),
	}
	if s := asString(value, "state"); s != "" {
		batch.State = JobState(s)
	}
	batch.Error = asObject(value, "error")
	if input := asObject(value, "inputConfig"); input != nil {
		batch.Src = parseBatchSourceFromVertex(input)
	}
	if output := asObject(value, "outputConfig"); output != nil {
		batch.Dest = parseBatchDestinationFromVertex(output)
	}
	batch.CompletionStats = asObject(value, "completionStats")
	return batch
}

func parseBatchSourceFromVertex(input map[string]any) *BatchJobSource {
	src := &BatchJobSource{Format: asString(input, "instancesFormat")}
	if gcs := asObject(input, "gcsSource"); gcs != nil {
		if uris, ok := gcs["uris"].([]any); ok {
			for _, u := range uris {
				if s, ok := u.(string); ok {
					src.GCSURI = append(src.GCSURI, s)
				}
			}
		}
	}
	if bq := asObject(input, "bigquerySource"); bq != nil {
		src.BigQueryURI = asString(bq, "inputUri")
	}
	if src.Format == "" && len(src.GCSURI) == 0 && src.BigQueryURI == "" {
		return nil
	}
	return src
}

func parseBatchDestinationFromVertex(output map[string]any) *BatchJobDestination {
	dest := &BatchJobDestination{Format: asString(output, "predictionsFormat")}
	if gcs := asObject(output, "gcsDestination"); gcs != nil {
		dest.GCSURI = asString(gcs, "outputUriPrefix")
	}
	if bq := asObject(output, "bigqueryDestination"); bq != nil {
		dest.BigQueryURI = asString(bq, "outputUri")
	}
	if dest.Format == "" && dest.GCSURI == "" && dest.BigQueryURI == "" {
		return nil
	}
	return dest
}

// GetBatchJob fetches a batch job's current status by name.
func (c *Client) GetBatchJob(ctx context.Context, name string) (*BatchJob, error) {
	qualified, err := dialect.NormalizeBatchJobName(c.dialect, c.project, c.location, name)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	getURL, err := c.buildResourceURL(qualified, nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	resp, err := c.send(ctx, "GET", getURL, nil, nil)
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
		return nil, NewParseError(fmt.Sprintf("decoding batch job: %s", err))
	}
	return parseBatchJobResponse(c.dialect, value), nil
}

// CancelBatchJob cancels a running batch job; the endpoint returns an
// empty body, so success is reported by the absence of an error.
func (c *Client) CancelBatchJob(ctx context.Context, name string) error {
	qualified, err := dialect.NormalizeBatchJobName(c.dialect, c.project, c.location, name)
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

// DeleteBatchJob deletes a batch job's bookkeeping record.
func (c *Client) DeleteBatchJob(ctx context.Context, name string) error {
	qualified, err := dialect.NormalizeBatchJobName(c.dialect, c.project, c.location, name)
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

// ListBatchJobsConfig carries pagination and (Vertex-only) filter
// parameters.
type ListBatchJobsConfig struct {
	PageSize  *int
	PageToken string
	Filter    string
}

// ListBatchJobsResponse is one page of batch jobs.
type ListBatchJobsResponse struct {
	BatchJobs     []BatchJob
	NextPageToken string
}

// ListBatchJobs returns one page of batch jobs; Filter is Vertex-only
// and rejected on the Gemini-API dialect.
func (c *Client) ListBatchJobs(ctx context.Context, cfg ListBatchJobsConfig) (*ListBatchJobsResponse, error) {
	if c.dialect != dialect.Vertex && cfg.Filter != "" {
		return nil, NewInvalidConfigError("filter is not supported for Gemini API batch list")
	}

	var listURL string
	var err error
	if c.dialect == dialect.Vertex {
		listURL, err = c.buildResourceURL("batchPredictionJobs", nil)
	} else {
		listURL, err = c.buildResourceURL("batches", nil)
	}
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	listURL = appendListQuery(listURL, cfg.PageSize, cfg.PageToken)
	if cfg.Filter != "" {
		sep := "?"
		if strings.Contains(listURL, "?") {
			sep = "&"
		}
		listURL += sep + "filter=" + url.QueryEscape(cfg.Filter)
	}

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
		return nil, NewParseError(fmt.Sprintf("decoding batch job list: %s", err))
	}

	out := &ListBatchJobsResponse{NextPageToken: asString(value, "nextPageToken")}
	if c.dialect == dialect.Vertex {
		if jobs, ok := value["batchPredictionJobs"].([]any); ok {
			for _, j := range jobs {
				if jm, ok := j.(map[string]any); ok {
					out.BatchJobs = append(out.BatchJobs, *parseBatchJobFromVertex(jm))
				}
			}
		}
	} else if ops, ok := value["operations"].([]any); ok {
		for _, op := range ops {
			if opm, ok := op.(map[string]any); ok {
				out.BatchJobs = append(out.BatchJobs, *parseBatchJobFromMLDev(opm))
			}
		}
	}
	return out, nil
}

// AllBatchJobs pages through every batch job.
func (c *Client) AllBatchJobs(ctx context.Context, cfg ListBatchJobsConfig) ([]BatchJob, error) {
	var out []BatchJob
	for {
		page, err := c.ListBatchJobs(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, page.BatchJobs...)
		if page.NextPageToken == "" {
			return out, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}

package genai_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/auth"
	"github.com/google-gemini/genai-go/genaitest"
)

func TestCreateTuningJobGeminiAPISupervised(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"tunedModels/abc","state":"JOB_STATE_QUEUED"}`))
	client := newMockClient(t, transport)

	epochs := 3
	job, err := client.CreateTuningJob(context.Background(), "gemini-2.0-flash", genai.CreateTuningJobConfig{
		DisplayName: "my-tune",
		Spec: genai.TuningSpec{
			TrainingDatasetURI: "gs://bucket/train.jsonl",
			Epochs:             &epochs,
		},
	})
	if err != nil {
		t.Fatalf("CreateTuningJob: %v", err)
	}
	if job.Name != "tunedModels/abc" || job.State != genai.JobStateQueued {
		t.Errorf("unexpected job: %+v", job)
	}

	reqs := transport.Requests()
	wantURL := "http://mock/v1beta/tunedModels"
	if reqs[0].URL != wantURL {
		t.Errorf("request URL = %q, want %q", reqs[0].URL, wantURL)
	}
}

func TestCreateTuningJobPreferenceSpecUsesPreferenceKey(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"tunedModels/abc"}`))
	client := newMockClient(t, transport)

	_, err := client.CreateTuningJob(context.Background(), "gemini-2.0-flash", genai.CreateTuningJobConfig{
		Spec: genai.TuningSpec{Preference: true, TrainingDatasetURI: "gs://bucket/pref.jsonl"},
	})
	if err != nil {
		t.Fatalf("CreateTuningJob: %v", err)
	}
	body := string(transport.Requests()[0].Body)
	if !strings.Contains(body, `"preferenceTuningSpec"`) {
		t.Errorf("expected preferenceTuningSpec key in body, got %s", body)
	}
}

func TestCreateTuningJobVertexUsesTuningJobsAndDisplayNameKey(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"projects/my-project/locations/us-central1/tuningJobs/abc"}`))
	cred := &auth.ADC{Fetch: func(_ context.Context) (http.Header, error) { return http.Header{}, nil }}
	client, err := genai.NewClient(genai.ClientConfig{
		Dialect:    genai.Vertex,
		Credential: cred,
		Project:    "my-project",
		Location:   "us-central1",
		BaseURL:    "http://mock",
		APIVersion: "v1beta1",
		HTTPClient: transport.HTTPClient(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.CreateTuningJob(context.Background(), "gemini-2.0-flash", genai.CreateTuningJobConfig{
		DisplayName: "my-tune",
		Spec:        genai.TuningSpec{TrainingDatasetURI: "gs://bucket/train.jsonl"},
	})
	if err != nil {
		t.Fatalf("CreateTuningJob: %v", err)
	}
	body := string(transport.Requests()[0].Body)
	if !strings.Contains(body, `"tunedModelDisplayName":"my-tune"`) {
		t.Errorf("expected tunedModelDisplayName key on Vertex, got %s", body)
	}
	if !strings.Contains(transport.Requests()[0].URL, "tuningJobs") {
		t.Errorf("request URL = %q, want tuningJobs", transport.Requests()[0].URL)
	}
}

// Gemini-API tuning jobs have no cancel endpoint.
func TestCancelTuningJobRejectedOnGeminiAPI(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newMockClient(t, transport)

	err := client.CancelTuningJob(context.Background(), "tunedModels/abc")
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindInvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
	if len(transport.Requests()) != 0 {
		t.Errorf("expected no network calls, got %d", len(transport.Requests()))
	}
}

func TestAllTuningJobsPagesThroughEveryResult(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"tunedModels":[{"name":"tunedModels/a"}],"nextPageToken":"p2"}`))
	transport.EnqueueJSON(200, []byte(`{"tunedModels":[{"name":"tunedModels/b"}]}`))
	client := newMockClient(t, transport)

	all, err := client.AllTuningJobs(context.Background(), genai.ListTuningJobsConfig{})
	if err != nil {
		t.Fatalf("AllTuningJobs: %v", err)
	}
	if len(all) != 2 || all[0].Name != "tunedModels/a" || all[1].Name != "tunedModels/b" {
		t.Fatalf("unexpected pages: %+v", all)
	}
}

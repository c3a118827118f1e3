package genai_test

import (
	"context"
	"testing"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/genaitest"
)

func TestCreateFileSearchStore(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"fileSearchStores/abc","displayName":"my-store"}`))
	client := newMockClient(t, transport)

	store, err := client.CreateFileSearchStore(context.Background(), genai.CreateFileSearchStoreConfig{DisplayName: "my-store"})
	if err != nil {
		t.Fatalf("CreateFileSearchStore: %v", err)
	}
	if store.Name != "fileSearchStores/abc" {
		t.Errorf("Name = %q, want fileSearchStores/abc", store.Name)
	}
}

// FileSearchStores is Gemini-API-only.
func TestFileSearchStoreRejectedOnVertex(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newVertexMockClient(t, transport)

	_, err := client.CreateFileSearchStore(context.Background(), genai.CreateFileSearchStoreConfig{})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindInvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
	if len(transport.Requests()) != 0 {
		t.Errorf("expected no network calls, got %d", len(transport.Requests()))
	}
}

func TestDeleteFileSearchStoreForceAddsQueryParam(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, nil)
	client := newMockClient(t, transport)

	if err := client.DeleteFileSearchStore(context.Background(), "abc", true); err != nil {
		t.Fatalf("DeleteFileSearchStore: %v", err)
	}
	wantURL := "http://mock/v1beta/fileSearchStores/abc?force=true"
	if transport.Requests()[0].URL != wantURL {
		t.Errorf("request URL = %q, want %q", transport.Requests()[0].URL, wantURL)
	}
}

func TestUploadToFileSearchStoreReturnsOperation(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueUploadStart("http://mock/upload/session-1")
	transport.EnqueueUploadChunk("final", []byte(`{"name":"operations/abc","done":true}`))
	client := newMockClient(t, transport)

	op, err := client.UploadToFileSearchStore(context.Background(), "abc", []byte("hello"), "text/plain", genai.UploadToFileSearchStoreConfig{})
	if err != nil {
		t.Fatalf("UploadToFileSearchStore: %v", err)
	}
	if op.Name != "operations/abc" || !op.Done {
		t.Errorf("unexpected operation: %+v", op)
	}
}

func TestUploadToFileSearchStoreRequiresMimeType(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newMockClient(t, transport)

	_, err := client.UploadToFileSearchStore(context.Background(), "abc", []byte("hello"), "", genai.UploadToFileSearchStoreConfig{})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindInvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
	if len(transport.Requests()) != 0 {
		t.Errorf("expected no network calls, got %d", len(transport.Requests()))
	}
}

func TestImportFileQualifiesBareNames(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"operations/import-1","done":false}`))
	client := newMockClient(t, transport)

	op, err := client.ImportFile(context.Background(), "abc", "xyz")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if op.Name != "operations/import-1" {
		t.Errorf("Name = %q", op.Name)
	}
	wantURL := "http://mock/v1beta/fileSearchStores/abc:importFile"
	if transport.Requests()[0].URL != wantURL {
		t.Errorf("request URL = %q, want %q", transport.Requests()[0].URL, wantURL)
	}
}

func TestAllFileSearchStoresPagesThroughEveryResult(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"fileSearchStores":[{"name":"fileSearchStores/a"}],"nextPageToken":"p2"}`))
	transport.EnqueueJSON(200, []byte(`{"fileSearchStores":[{"name":"fileSearchStores/b"}]}`))
	client := newMockClient(t, transport)

	all, err := client.AllFileSearchStores(context.Background(), genai.ListFileSearchStoresConfig{})
	if err != nil {
		t.Fatalf("AllFileSearchStores: %v", err)
	}
	if len(all) != 2 || all[0].Name != "fileSearchStores/a" || all[1].Name != "fileSearchStores/b" {
		t.Fatalf("unexpected pages: %+v", all)
	}
}

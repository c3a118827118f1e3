package genai_test

import (
	"context"
	"testing"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/genaitest"
)

func TestGetDocumentQualifiesBareNames(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"fileSearchStores/abc/documents/xyz","state":"ACTIVE"}`))
	client := newMockClient(t, transport)

	doc, err := client.GetDocument(context.Background(), "abc", "xyz")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Name != "fileSearchStores/abc/documents/xyz" {
		t.Errorf("Name = %q", doc.Name)
	}
	wantURL := "http://mock/v1beta/fileSearchStores/abc/documents/xyz"
	if transport.Requests()[0].URL != wantURL {
		t.Errorf("request URL = %q, want %q", transport.Requests()[0].URL, wantURL)
	}
}

// Documents live under FileSearchStores, which is Gemini-API-only.
func TestGetDocumentRejectedOnVertex(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newVertexMockClient(t, transport)

	_, err := client.GetDocument(context.Background(), "abc", "xyz")
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindInvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
	if len(transport.Requests()) != 0 {
		t.Errorf("expected no network calls, got %d", len(transport.Requests()))
	}
}

func TestDeleteDocument(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, nil)
	client := newMockClient(t, transport)

	if err := client.DeleteDocument(context.Background(), "fileSearchStores/abc", "documents/xyz"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if transport.Requests()[0].Method != "DELETE" {
		t.Errorf("method = %q, want DELETE", transport.Requests()[0].Method)
	}
}

func TestAllDocumentsPagesThroughEveryResult(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"documents":[{"name":"fileSearchStores/abc/documents/a"}],"nextPageToken":"p2"}`))
	transport.EnqueueJSON(200, []byte(`{"documents":[{"name":"fileSearchStores/abc/documents/b"}]}`))
	client := newMockClient(t, transport)

	all, err := client.AllDocuments(context.Background(), "abc", genai.ListDocumentsConfig{})
	if err != nil {
		t.Fatalf("AllDocuments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unexpected pages: %+v", all)
	}
}

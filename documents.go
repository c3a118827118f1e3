package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google-gemini/genai-go/internal/dialect"
)

// documentNamePrefix is the fully-qualified prefix for a Document, nested
// one level under its owning FileSearchStore.
const documentNamePrefix = "documents/"

// Document is one ingested unit within a FileSearchStore, the backing
// store the FileSearch tool queries.
type Document struct {
	Name        string
	DisplayName string
	CreateTime  string
	UpdateTime  string
	SizeBytes   string
	State       string
}

type documentWire struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
	SizeBytes   string `json:"sizeBytes,omitempty"`
	State       string `json:"state,omitempty"`
}

func (d *Document) fromWire(w documentWire) {
	d.Name = w.Name
	d.DisplayName = w.DisplayName
	d.CreateTime = w.CreateTime
	d.UpdateTime = w.UpdateTime
	d.SizeBytes = w.SizeBytes
	d.State = w.State
}

func documentPath(fileSearchStoreName, documentName string) (string, error) {
	storeName, err := dialect.NormalizeResourceName(fileSearchStoreName, fileSearchStoreNamePrefix)
	if err != nil {
		return "", err
	}
	docName, err := dialect.NormalizeResourceName(documentName, documentNamePrefix)
	if err != nil {
		return "", err
	}
	return storeName + "/" + docName, nil
}

// GetDocument fetches one Document within a FileSearchStore.
func (c *Client) GetDocument(ctx context.Context, fileSearchStoreName, documentName string) (*Document, error) {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return nil, err
	}
	path, err := documentPath(fileSearchStoreName, documentName)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	getURL, err := c.buildResourceURL(path, nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[documentWire](ctx, c, "GET", getURL, nil, nil)
	if err != nil {
		return nil, err
	}
	var doc Document
	doc.fromWire(*wireResp)
	return &doc, nil
}

// DeleteDocument removes a Document from its FileSearchStore.
func (c *Client) DeleteDocument(ctx context.Context, fileSearchStoreName, documentName string) error {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return err
	}
	path, err := documentPath(fileSearchStoreName, documentName)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	deleteURL, err := c.buildResourceURL(path, nil)
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

// ListDocumentsConfig carries pagination parameters.
type ListDocumentsConfig struct {
	PageSize  *int
	PageToken string
}

// ListDocumentsResponse is one page of Documents.
type ListDocumentsResponse struct {
	Documents     []Document
	NextPageToken string
}

type listDocumentsWire struct {
	Documents     []documentWire `json:"documents,omitempty"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

// ListDocuments returns one page of Documents within a FileSearchStore.
func (c *Client) ListDocuments(ctx context.Context, fileSearchStoreName string, cfg ListDocumentsConfig) (*ListDocumentsResponse, error) {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return nil, err
	}
	storeName, err := dialect.NormalizeResourceName(fileSearchStoreName, fileSearchStoreNamePrefix)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	listURL, err := c.buildResourceURL(storeName+"/documents", nil)
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
	var w listDocumentsWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding documents list: %s", err))
	}
	out := &ListDocumentsResponse{NextPageToken: w.NextPageToken}
	for _, dw := range w.Documents {
		var d Document
		d.fromWire(dw)
		out.Documents = append(out.Documents, d)
	}
	return out, nil
}

// AllDocuments pages through every Document in a FileSearchStore.
func (c *Client) AllDocuments(ctx context.Context, fileSearchStoreName string, cfg ListDocumentsConfig) ([]Document, error) {
	var out []Document
	for {
		page, err := c.ListDocuments(ctx, fileSearchStoreName, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Documents...)
		if page.NextPageToken == "" {
			return out, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}

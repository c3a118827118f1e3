package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google-gemini/genai-go/internal/dialect"
	"github.com/google-gemini/genai-go/upload"
)

// fileSearchStoreNamePrefix is the fully-qualified resource prefix the
// FileSearchStores service normalises bare ids into.
const fileSearchStoreNamePrefix = "fileSearchStores/"

// FileSearchStore is a managed document index the model can search via
// the FileSearch tool.
type FileSearchStore struct {
	Name        string
	DisplayName string
	CreateTime  string
	UpdateTime  string
}

type fileSearchStoreWire struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
}

func (s *FileSearchStore) fromWire(w fileSearchStoreWire) {
	s.Name = w.Name
	s.DisplayName = w.DisplayName
	s.CreateTime = w.CreateTime
	s.UpdateTime = w.UpdateTime
}

// CreateFileSearchStoreConfig carries the creation body.
type CreateFileSearchStoreConfig struct {
	DisplayName string
}

// CreateFileSearchStore creates a FileSearchStore.
func (c *Client) CreateFileSearchStore(ctx context.Context, cfg CreateFileSearchStoreConfig) (*FileSearchStore, error) {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return nil, err
	}
	createURL, err := c.buildResourceURL("fileSearchStores", nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	body := map[string]any{}
	if cfg.DisplayName != "" {
		body["displayName"] = cfg.DisplayName
	}
	wireResp, err := doJSON[fileSearchStoreWire](ctx, c, "POST", createURL, body, nil)
	if err != nil {
		return nil, err
	}
	var store FileSearchStore
	store.fromWire(*wireResp)
	return &store, nil
}

// GetFileSearchStore fetches a FileSearchStore by bare id or fully
// qualified name.
func (c *Client) GetFileSearchStore(ctx context.Context, name string) (*FileSearchStore, error) {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return nil, err
	}
	qualified, err := dialect.NormalizeResourceName(name, fileSearchStoreNamePrefix)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	getURL, err := c.buildResourceURL(qualified, nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[fileSearchStoreWire](ctx, c, "GET", getURL, nil, nil)
	if err != nil {
		return nil, err
	}
	var store FileSearchStore
	store.fromWire(*wireResp)
	return &store, nil
}

// DeleteFileSearchStore deletes a FileSearchStore. force=true mirrors the
// API's query flag for deleting a non-empty store.
func (c *Client) DeleteFileSearchStore(ctx context.Context, name string, force bool) error {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return err
	}
	qualified, err := dialect.NormalizeResourceName(name, fileSearchStoreNamePrefix)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	deleteURL, err := c.buildResourceURL(qualified, nil)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	if force {
		deleteURL += "?force=true"
	}
	resp, err := c.send(ctx, "DELETE", deleteURL, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ListFileSearchStoresConfig carries pagination parameters.
type ListFileSearchStoresConfig struct {
	PageSize  *int
	PageToken string
}

// ListFileSearchStoresResponse is one page of FileSearchStores.
type ListFileSearchStoresResponse struct {
	FileSearchStores []FileSearchStore
	NextPageToken    string
}

type listFileSearchStoresWire struct {
	FileSearchStores []fileSearchStoreWire `json:"fileSearchStores,omitempty"`
	NextPageToken    string                `json:"nextPageToken,omitempty"`
}

// ListFileSearchStores returns one page of FileSearchStores.
func (c *Client) ListFileSearchStores(ctx context.Context, cfg ListFileSearchStoresConfig) (*ListFileSearchStoresResponse, error) {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return nil, err
	}
	listURL, err := c.buildResourceURL("fileSearchStores", nil)
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
	var w listFileSearchStoresWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding fileSearchStores list: %s", err))
	}
	out := &ListFileSearchStoresResponse{NextPageToken: w.NextPageToken}
	for _, sw := range w.FileSearchStores {
		var s FileSearchStore
		s.fromWire(sw)
		out.FileSearchStores = append(out.FileSearchStores, s)
	}
	return out, nil
}

// AllFileSearchStores pages through every FileSearchStore until the page
// token runs out.
func (c *Client) AllFileSearchStores(ctx context.Context, cfg ListFileSearchStoresConfig) ([]FileSearchStore, error) {
	var out []FileSearchStore
	for {
		page, err := c.ListFileSearchStores(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, page.FileSearchStores...)
		if page.NextPageToken == "" {
			return out, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}

// UploadToFileSearchStoreConfig carries the optional metadata an upload
// into a FileSearchStore may set.
type UploadToFileSearchStoreConfig struct {
	DisplayName string
}

// UploadToFileSearchStore drives the resumable-upload state machine to
// ingest raw bytes into a FileSearchStore, returning the Operation
// handle the final chunk's response carries.
func (c *Client) UploadToFileSearchStore(ctx context.Context, fileSearchStoreName string, data []byte, mimeType string, cfg UploadToFileSearchStoreConfig) (*Operation, error) {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return nil, err
	}
	if mimeType == "" {
		return nil, NewInvalidConfigError("mime_type is required when uploading raw bytes")
	}
	storeName, err := dialect.NormalizeResourceName(fileSearchStoreName, fileSearchStoreNamePrefix)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	startURL, err := c.buildUploadURL(fmt.Sprintf("%s:uploadToFileSearchStore", storeName), nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	body := map[string]any{}
	if cfg.DisplayName != "" {
		body["displayName"] = cfg.DisplayName
	}

	respBody, err := upload.Run(ctx, c.uploadDoer(ctx), json.Marshal, upload.StartRequest{
		URL:         startURL,
		Metadata:    body,
		ContentType: mimeType,
	}, data, upload.DefaultFilesChunkSize, uploadParseErr)
	if err != nil {
		return nil, err
	}

	if len(respBody) == 0 {
		return &Operation{}, nil
	}
	var wireOp operationWire
	if err := json.Unmarshal(respBody, &wireOp); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding upload operation: %s", err))
	}
	return wireOp.toOperation(c.dialect), nil
}

// ImportFile imports an existing Files resource into a FileSearchStore.
// The file name is normalised with the Files resource's bare-id rule,
// not the FileSearchStore's own prefix-preserving rule.
func (c *Client) ImportFile(ctx context.Context, fileSearchStoreName, fileName string) (*Operation, error) {
	if err := c.checkResourceAvailable("fileSearchStores"); err != nil {
		return nil, err
	}
	storeName, err := dialect.NormalizeResourceName(fileSearchStoreName, fileSearchStoreNamePrefix)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	normalizedFile, err := dialect.NormalizeFileName(fileName)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	importURL, err := c.buildResourceURL(fmt.Sprintf("%s:importFile", storeName), nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	body := map[string]any{"fileName": "files/" + normalizedFile}

	wireOp, err := doJSON[operationWire](ctx, c, "POST", importURL, body, nil)
	if err != nil {
		return nil, err
	}
	return wireOp.toOperation(c.dialect), nil
}

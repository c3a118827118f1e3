package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google-gemini/genai-go/internal/dialect"
	"github.com/google-gemini/genai-go/upload"
)

// FileState is the Files resource's processing state, accepting both
// the canonical SCREAMING_SNAKE_CASE name and the STATE_-prefixed alias
// (both ACTIVE and STATE_ACTIVE decode to FileStateActive).
type FileState string

const (
	FileStateUnspecified FileState = "STATE_UNSPECIFIED"
	FileStateProcessing  FileState = "PROCESSING"
	FileStateActive      FileState = "ACTIVE"
	FileStateFailed      FileState = "FAILED"
)

func (s *FileState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "STATE_PROCESSING":
		raw = string(FileStateProcessing)
	case "STATE_ACTIVE":
		raw = string(FileStateActive)
	case "STATE_FAILED":
		raw = string(FileStateFailed)
	}
	*s = FileState(raw)
	return nil
}

// File is the Files resource.
type File struct {
	Name           string
	DisplayName    string
	MimeType       string
	SizeBytes      string
	CreateTime     string
	UpdateTime     string
	ExpirationTime string
	SHA256Hash     string
	URI            string
	DownloadURI    string
	State          FileState
	Error          map[string]any
}

type fileWire struct {
	Name           string         `json:"name,omitempty"`
	DisplayName    string         `json:"displayName,omitempty"`
	MimeType       string         `json:"mimeType,omitempty"`
	SizeBytes      string         `json:"sizeBytes,omitempty"`
	CreateTime     string         `json:"createTime,omitempty"`
	UpdateTime     string         `json:"updateTime,omitempty"`
	ExpirationTime string         `json:"expirationTime,omitempty"`
	SHA256Hash     string         `json:"sha256Hash,omitempty"`
	URI            string         `json:"uri,omitempty"`
	DownloadURI    string         `json:"downloadUri,omitempty"`
	State          FileState      `json:"state,omitempty"`
	Error          map[string]any `json:"error,omitempty"`
}

func (f *File) fromWire(w fileWire) {
	f.Name = w.Name
	f.DisplayName = w.DisplayName
	f.MimeType = w.MimeType
	f.SizeBytes = w.SizeBytes
	f.CreateTime = w.CreateTime
	f.UpdateTime = w.UpdateTime
	f.ExpirationTime = w.ExpirationTime
	f.SHA256Hash = w.SHA256Hash
	f.URI = w.URI
	f.DownloadURI = w.DownloadURI
	f.State = w.State
	f.Error = w.Error
}

// UploadFileConfig carries the optional metadata an upload may set.
type UploadFileConfig struct {
	Name        string
	DisplayName string
}

// normalizeUploadFileName qualifies the caller-chosen target name: unlike
// dialect.NormalizeFileName (used for get/delete/download, which strips the
// prefix), a caller-supplied upload name keeps its "files/" prefix, adding
// one if absent.
func normalizeUploadFileName(name string) string {
	if strings.HasPrefix(name, "files/") {
		return name
	}
	return "files/" + name
}

// UploadFile uploads raw bytes as a new File, the simple form.
func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType string) (*File, error) {
	return c.UploadFileWithConfig(ctx, data, mimeType, UploadFileConfig{})
}

// UploadFileWithConfig drives the resumable-upload state machine to
// create a File.
func (c *Client) UploadFileWithConfig(ctx context.Context, data []byte, mimeType string, cfg UploadFileConfig) (*File, error) {
	if err := c.checkResourceAvailable("files"); err != nil {
		return nil, err
	}
	if mimeType == "" {
		return nil, NewInvalidConfigError("mime_type is required when uploading raw bytes")
	}

	meta := map[string]any{}
	if cfg.Name != "" {
		meta["name"] = normalizeUploadFileName(cfg.Name)
	}
	if cfg.DisplayName != "" {
		meta["displayName"] = cfg.DisplayName
	}
	meta["mimeType"] = mimeType
	body := map[string]any{"file": meta}

	startURL, err := c.buildUploadURL("files", nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
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
		return nil, NewParseError("upload completed but response body was empty")
	}

	var w fileWire
	if err := json.Unmarshal(respBody, &w); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding uploaded file: %s", err))
	}
	var file File
	file.fromWire(w)
	return &file, nil
}

// DownloadFile fetches a File's bytes by name, URI, or download URL;
// nameOrURI is normalised to a bare id before the download URL is built.
func (c *Client) DownloadFile(ctx context.Context, nameOrURI string) ([]byte, error) {
	if err := c.checkResourceAvailable("files"); err != nil {
		return nil, err
	}
	name, err := dialect.NormalizeFileName(nameOrURI)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	downloadURL, err := c.buildResourceURL(fmt.Sprintf("files/%s:download", name), nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	downloadURL += "?alt=media"

	resp, err := c.send(ctx, "GET", downloadURL, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	return raw, nil
}

// ListFilesConfig carries the list endpoint's pagination parameters.
type ListFilesConfig struct {
	PageSize  *int
	PageToken string
}

// ListFilesResponse is one page of files.
type ListFilesResponse struct {
	Files         []File
	NextPageToken string
}

type listFilesWire struct {
	Files         []fileWire `json:"files,omitempty"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// ListFiles returns one page of files.
func (c *Client) ListFiles(ctx context.Context, cfg ListFilesConfig) (*ListFilesResponse, error) {
	if err := c.checkResourceAvailable("files"); err != nil {
		return nil, err
	}
	listURL, err := c.buildResourceURL("files", nil)
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
	var w listFilesWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding files list: %s", err))
	}
	out := &ListFilesResponse{NextPageToken: w.NextPageToken}
	for _, fw := range w.Files {
		var f File
		f.fromWire(fw)
		out.Files = append(out.Files, f)
	}
	return out, nil
}

// AllFiles pages through every file, looping until nextPageToken is
// empty or absent. Pagination is inherently sequential: each page needs
// the prior page's token.
func (c *Client) AllFiles(ctx context.Context, cfg ListFilesConfig) ([]File, error) {
	var out []File
	for {
		page, err := c.ListFiles(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Files...)
		if page.NextPageToken == "" {
			return out, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}

// GetFile fetches a File's metadata by name or URI.
func (c *Client) GetFile(ctx context.Context, nameOrURI string) (*File, error) {
	if err := c.checkResourceAvailable("files"); err != nil {
		return nil, err
	}
	name, err := dialect.NormalizeFileName(nameOrURI)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	getURL, err := c.buildResourceURL("files/"+name, nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[fileWire](ctx, c, "GET", getURL, nil, nil)
	if err != nil {
		return nil, err
	}
	var file File
	file.fromWire(*wireResp)
	return &file, nil
}

// DeleteFile deletes a File by name or URI. The endpoint returns an
// empty body; success is reported by the absence of an error.
func (c *Client) DeleteFile(ctx context.Context, nameOrURI string) error {
	if err := c.checkResourceAvailable("files"); err != nil {
		return err
	}
	name, err := dialect.NormalizeFileName(nameOrURI)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	deleteURL, err := c.buildResourceURL("files/"+name, nil)
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

// WaitForFileConfig configures WaitForActive's poll loop.
// DefaultWaitForFileConfig returns a 2s poll interval and a 300s timeout.
// WaitForActive substitutes the 2s interval for a non-positive
// PollInterval; a nil Timeout means it polls with no deadline.
type WaitForFileConfig struct {
	PollInterval time.Duration
	Timeout      *time.Duration
}

// DefaultWaitForFileConfig returns the default poll settings.
func DefaultWaitForFileConfig() WaitForFileConfig {
	timeout := 300 * time.Second
	return WaitForFileConfig{PollInterval: 2 * time.Second, Timeout: &timeout}
}

// WaitForActive polls Get until the File's state is ACTIVE, fails fast
// on FAILED, and times out per cfg.Timeout.
func (c *Client) WaitForActive(ctx context.Context, nameOrURI string, cfg WaitForFileConfig) (*File, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultWaitForFileConfig().PollInterval
	}
	start := time.Now()
	for {
		file, err := c.GetFile(ctx, nameOrURI)
		if err != nil {
			return nil, err
		}
		switch file.State {
		case FileStateActive:
			return file, nil
		case FileStateFailed:
			return nil, NewAPIError(500, "File processing failed")
		}

		if cfg.Timeout != nil && time.Since(start) >= *cfg.Timeout {
			return nil, NewTimeoutError("timed out waiting for file to become ACTIVE")
		}

		select {
		case <-ctx.Done():
			return nil, NewTimeoutError(ctx.Err().Error())
		case <-time.After(cfg.PollInterval):
		}
	}
}

// appendListQuery appends the pageSize/pageToken query parameters every
// list endpoint shares.
func appendListQuery(rawURL string, pageSize *int, pageToken string) string {
	if pageSize == nil && pageToken == "" {
		return rawURL
	}
	q := url.Values{}
	if pageSize != nil {
		q.Set("pageSize", fmt.Sprintf("%d", *pageSize))
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + q.Encode()
}

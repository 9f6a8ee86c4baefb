// Package api is the HTTP client for the cloud-dist service.
//
// The service is not tree-aware: it exposes flat, per-folder listings
// addressed by an opaque identity (empty string for the root). Everything
// hierarchical is reconstructed client-side in internal/nav.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/logging"
)

// Client talks to the cloud-dist service. Idempotent JSON calls go through
// the retry transport; mutating calls are sent exactly once through timed,
// and unbounded streams (upload, download) through plain.
type Client struct {
	baseURL string
	token   string
	retry   *retryablehttp.Client
	timed   *http.Client
	plain   *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// New creates a client. Timeout bounds a single request; streaming transfers
// (upload, download) use the un-timed plain client and rely on the caller's
// context instead.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	timed := &http.Client{Timeout: cfg.Timeout}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient = timed
	rc.Logger = retryLogger{}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		retry:   rc,
		timed:   timed,
		plain:   &http.Client{},
	}
}

// retryLogger adapts zap to retryablehttp's LeveledLogger.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...interface{}) { logging.L().Sugar().Errorw(msg, kv...) }
func (retryLogger) Warn(msg string, kv ...interface{})  { logging.L().Sugar().Warnw(msg, kv...) }
func (retryLogger) Info(msg string, kv ...interface{})  { logging.L().Sugar().Debugw(msg, kv...) }
func (retryLogger) Debug(msg string, kv ...interface{}) { logging.L().Sugar().Debugw(msg, kv...) }

// do sends a JSON request through the retry transport and decodes the reply
// into out (which may be nil). Only idempotent endpoints may use it.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, raw)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyAuth(req.Header)

	resp, err := c.retry.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doOnce sends a JSON request exactly once. Mutating endpoints use it: the
// first attempt may have committed even when the reply is lost, and
// re-sending would duplicate the mutation (a second folder, a spurious
// duplicate-name rejection on register).
func (c *Client) doOnce(ctx context.Context, method, path string, body, out interface{}) error {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyAuth(req.Header)

	resp, err := c.timed.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) applyAuth(h http.Header) {
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeError(resp *http.Response) error {
	var er errorReply
	if json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: er.Error}
	}
	return &APIError{Status: resp.StatusCode}
}

// ListEntries lists the direct contents of a folder. Identity "" is the root.
func (c *Client) ListEntries(ctx context.Context, identity string, page, size int) ([]Entry, int64, error) {
	var reply fileListReply
	err := c.do(ctx, http.MethodPost, "/user/file/list", fileListRequest{
		Identity: identity,
		Page:     page,
		Size:     size,
	}, &reply)
	if err != nil {
		return nil, 0, err
	}
	return reply.List, reply.Count, nil
}

// ListFolders lists only the direct subfolders of a folder. The reply rows
// carry no numeric id.
func (c *Client) ListFolders(ctx context.Context, identity string) ([]FolderRef, error) {
	var reply folderListReply
	err := c.do(ctx, http.MethodPost, "/user/folder/list", folderListRequest{Identity: identity}, &reply)
	if err != nil {
		return nil, err
	}
	return reply.List, nil
}

// CreateFolder creates a folder under the parent with the given numeric id
// (0 for the root) and returns the new folder's identity.
func (c *Client) CreateFolder(ctx context.Context, parentID int64, name string) (string, error) {
	var reply folderCreateReply
	err := c.doOnce(ctx, http.MethodPost, "/user/folder/create", folderCreateRequest{
		ParentID: parentID,
		Name:     name,
	}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Identity, nil
}

// Rename updates an entry's display name.
func (c *Client) Rename(ctx context.Context, identity, name string) error {
	return c.doOnce(ctx, http.MethodPost, "/user/file/name/update", renameRequest{
		Identity: identity,
		Name:     name,
	}, nil)
}

// Move reparents an entry. parentIdentity "" targets the root.
func (c *Client) Move(ctx context.Context, identity, parentIdentity string) error {
	return c.doOnce(ctx, http.MethodPut, "/user/file/move", moveRequest{
		Identity:       identity,
		ParentIdentity: parentIdentity,
	}, nil)
}

// Delete removes an entry from the namespace.
func (c *Client) Delete(ctx context.Context, identity string) error {
	return c.doOnce(ctx, http.MethodDelete, "/user/file/delete", deleteRequest{Identity: identity}, nil)
}

// RegisterUpload attaches an uploaded blob to the namespace under the folder
// with the given numeric id. A duplicate-name rejection is returned as an
// APIError recognizable via IsDuplicateName.
func (c *Client) RegisterUpload(ctx context.Context, parentID int64, repositoryIdentity, ext, name string) error {
	return c.doOnce(ctx, http.MethodPost, "/user/repository/save", registerUploadRequest{
		ParentID:           parentID,
		RepositoryIdentity: repositoryIdentity,
		Ext:                ext,
		Name:               name,
	}, nil)
}

// ProgressFunc reports fractional transfer progress in [0, 100].
type ProgressFunc func(percent float64)

// progressReader counts bytes read from the wrapped reader.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.progress != nil && p.total > 0 {
		p.read += int64(n)
		pct := float64(p.read) / float64(p.total) * 100
		if pct > 100 {
			pct = 100
		}
		p.progress(pct)
	}
	return n, err
}

// Upload streams a single-shot upload and returns the stored blob's
// repository identity. The body is not rewindable, so this path never
// retries.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, size int64, progress ProgressFunc) (UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{r: r, total: size, progress: progress}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file/upload", pr)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.applyAuth(req.Header)

	resp, err := c.plain.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UploadResult{}, decodeError(resp)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, err
	}
	logging.Debug("upload complete",
		zap.String("name", name),
		zap.String("repository_identity", result.Identity))
	return result, nil
}

// PrepareUpload opens a chunked upload session. A non-empty Identity in the
// result means the blob already exists and no transfer is needed.
func (c *Client) PrepareUpload(ctx context.Context, md5sum, name, ext string) (PrepareResult, error) {
	var reply PrepareResult
	err := c.do(ctx, http.MethodPost, "/file/upload/prepare", prepareRequest{
		Md5:  md5sum,
		Name: name,
		Ext:  ext,
	}, &reply)
	return reply, err
}

// UploadChunk sends one part of a chunked upload. Part numbers start at 1.
// Re-sending a part overwrites it with the same bytes, so this path retries.
func (c *Client) UploadChunk(ctx context.Context, key, uploadID string, partNumber int, part []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("key", key); err != nil {
		return "", err
	}
	if err := mw.WriteField("upload_id", uploadID); err != nil {
		return "", err
	}
	if err := mw.WriteField("part_number", strconv.Itoa(partNumber)); err != nil {
		return "", err
	}
	w, err := mw.CreateFormFile("file", "part")
	if err != nil {
		return "", err
	}
	if _, err := w.Write(part); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file/upload/chunk", buf.Bytes())
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.applyAuth(req.Header)

	resp, err := c.retry.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload chunk %d: %w", partNumber, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeError(resp)
	}
	var reply chunkReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", err
	}
	return reply.Etag, nil
}

// CompleteUpload finalizes a chunked upload and returns the blob's
// repository identity.
func (c *Client) CompleteUpload(ctx context.Context, md5sum, name, ext string, size int64, key, uploadID string, parts []UploadPart) (string, error) {
	var reply completeReply
	err := c.doOnce(ctx, http.MethodPost, "/file/upload/chunk/complete", completeRequest{
		Md5:      md5sum,
		Name:     name,
		Ext:      ext,
		Size:     size,
		Key:      key,
		UploadID: uploadID,
		Parts:    parts,
	}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Identity, nil
}

// Download fetches a file's bytes by repository identity. The returned name
// is the server's filename hint (may be empty). The caller owns the reader.
func (c *Client) Download(ctx context.Context, repositoryIdentity string) (io.ReadCloser, string, int64, error) {
	u := c.baseURL + "/file/download?identity=" + url.QueryEscape(repositoryIdentity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", 0, err
	}
	c.applyAuth(req.Header)

	resp, err := c.plain.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, "", 0, decodeError(resp)
	}

	name := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name = params["filename"]
		}
	}
	return resp.Body, name, resp.ContentLength, nil
}

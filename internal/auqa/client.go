package auqa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// API is the surface of the analysis server the core depends on. *Client
// implements it; tests substitute fakes.
type API interface {
	FetchFiles(ctx context.Context) ([]ProcessedFile, error)
	FetchReport(ctx context.Context, fileID string) ([]byte, error)
	FetchQueueStatus(ctx context.Context, since int64) (QueueStatus, error)
	DeleteFiles(ctx context.Context, fileIDs []string) (DeleteResponse, error)
	ExportReports(ctx context.Context, fileIDs []string) (ExportResponse, error)
	Upload(ctx context.Context, name string, body io.Reader) (UploadResponse, error)
	ClipURL(fileID, clipID string) string
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the AuQA HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	upload    *http.Client
	userAgent string
}

const (
	defaultAPIURL    = "127.0.0.1:5001"
	defaultUserAgent = "auqa/0.1"
	requestTimeout   = 30 * time.Second

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// NewClient builds a Client for the server at apiURL ("host:port" or a full
// URL).
func NewClient(apiURL string) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		upload:    &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchFiles retrieves the processed-file list.
func (c *Client) FetchFiles(ctx context.Context) ([]ProcessedFile, error) {
	var payload []ProcessedFile
	if err := c.doJSON(ctx, http.MethodGet, &url.URL{Path: "/api/files"}, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchReport retrieves the raw report for fileID. The payload is returned
// undecoded because it comes in two shapes.
func (c *Client) FetchReport(ctx context.Context, fileID string) ([]byte, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("file id required")
	}
	rel := filePath(fileID, "report")
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, rel, nil, &raw); err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// FetchQueueStatus retrieves queue counts for jobs submitted at or after
// since (epoch seconds). since <= 0 asks for the whole queue.
func (c *Client) FetchQueueStatus(ctx context.Context, since int64) (QueueStatus, error) {
	values := url.Values{}
	if since > 0 {
		values.Set("since", strconv.FormatInt(since, 10))
	}
	rel := &url.URL{Path: "/api/queue/status", RawQuery: values.Encode()}
	var payload QueueStatus
	if err := c.doJSON(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return QueueStatus{}, err
	}
	return payload, nil
}

// DeleteFiles asks the server to delete the given files.
func (c *Client) DeleteFiles(ctx context.Context, fileIDs []string) (DeleteResponse, error) {
	var payload DeleteResponse
	err := c.doJSON(ctx, http.MethodPost, &url.URL{Path: "/api/files/delete"}, fileIDsRequest{FileIDs: fileIDs}, &payload)
	return payload, err
}

// ExportReports fetches raw reports for many files in one call.
func (c *Client) ExportReports(ctx context.Context, fileIDs []string) (ExportResponse, error) {
	var payload ExportResponse
	err := c.doJSON(ctx, http.MethodPost, &url.URL{Path: "/api/files/export"}, fileIDsRequest{FileIDs: fileIDs}, &payload)
	return payload, err
}

// Upload sends an audio file as multipart field "file".
func (c *Client) Upload(ctx context.Context, name string, body io.Reader) (UploadResponse, error) {
	rel := &url.URL{Path: "/api/upload"}
	op := http.MethodPost + " " + rel.Path

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return UploadResponse{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return UploadResponse{}, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, rel, &buf)
	if err != nil {
		return UploadResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var payload UploadResponse
	if err := c.send(c.upload, req, op, &payload); err != nil {
		return UploadResponse{}, err
	}
	return payload, nil
}

// Health checks /api/health.
func (c *Client) Health(ctx context.Context) error {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, &url.URL{Path: "/api/health"}, nil, &payload); err != nil {
		return err
	}
	if !strings.EqualFold(payload.Status, "ok") {
		return &TransportError{Op: "GET /api/health", Err: fmt.Errorf("status %q", payload.Status)}
	}
	return nil
}

// ClipURL returns the URL of an extracted detection clip.
func (c *Client) ClipURL(fileID, clipID string) string {
	rel := filePath(fileID, "clips", clipID)
	return c.baseURL.ResolveReference(rel).String()
}

// filePath builds /api/files/<fileID>/<rest> with every id escaped as a
// single segment, so ids containing "/" or dots keep their route.
func filePath(fileID string, rest ...string) *url.URL {
	segments := append([]string{"api", "files", fileID}, rest...)
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = escapeSegment(seg)
	}
	return &url.URL{
		Path:    "/" + strings.Join(segments, "/"),
		RawPath: "/" + strings.Join(escaped, "/"),
	}
}

func escapeSegment(seg string) string {
	if seg == "." || seg == ".." {
		return strings.Repeat("%2E", len(seg))
	}
	return url.PathEscape(seg)
}

func (c *Client) doJSON(ctx context.Context, method string, rel *url.URL, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, rel, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(c.http, req, method+" "+rel.Path, dest)
}

func (c *Client) newRequest(ctx context.Context, method string, rel *url.URL, body io.Reader) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

func (c *Client) send(hc *http.Client, req *http.Request, op string, dest any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &TransportError{Op: op, Status: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

package auqa

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const serverTimestampLayout = "2006-01-02 15:04:05"

// QueueStatus mirrors /api/queue/status. Total is expected to equal the sum
// of the other counts but the server is authoritative.
type QueueStatus struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Queued     int `json:"queued"`
	InProgress int `json:"inProgress"`
}

// Active reports whether any job is waiting or running.
func (q QueueStatus) Active() bool {
	return q.Queued > 0 || q.InProgress > 0
}

// Percent returns the completed fraction in [0, 1].
func (q QueueStatus) Percent() float64 {
	if q.Total <= 0 {
		return 0
	}
	p := float64(q.Completed) / float64(q.Total)
	if p > 1 {
		return 1
	}
	return p
}

// ProcessedFile is one entry of /api/files.
type ProcessedFile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IssueCount    int    `json:"issueCount"`
	ProcessedDate string `json:"processedDate"`
	ReportPath    string `json:"reportPath,omitempty"`
}

// UnmarshalJSON accepts the id as a string or a number.
func (f *ProcessedFile) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID            flexID `json:"id"`
		Name          string `json:"name"`
		IssueCount    int    `json:"issueCount"`
		ProcessedDate string `json:"processedDate"`
		ReportPath    string `json:"reportPath"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*f = ProcessedFile{
		ID:            string(wire.ID),
		Name:          wire.Name,
		IssueCount:    wire.IssueCount,
		ProcessedDate: wire.ProcessedDate,
		ReportPath:    wire.ReportPath,
	}
	return nil
}

// ParsedProcessedDate returns ProcessedDate as time.Time when possible.
func (f ProcessedFile) ParsedProcessedDate() time.Time {
	return parseTime(f.ProcessedDate)
}

// DeleteResponse mirrors /api/files/delete. Deleted may be a subset of the
// requested ids.
type DeleteResponse struct {
	Deleted []string `json:"deleted"`
}

// ExportResponse mirrors /api/files/export.
type ExportResponse struct {
	Reports []ExportedReport `json:"reports"`
	Errors  []ExportError    `json:"errors"`
}

// UnmarshalJSON accepts ids as strings or numbers.
func (d *DeleteResponse) UnmarshalJSON(data []byte) error {
	var wire struct {
		Deleted []flexID `json:"deleted"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	d.Deleted = nil
	for _, id := range wire.Deleted {
		d.Deleted = append(d.Deleted, string(id))
	}
	return nil
}

// ExportedReport carries one raw report payload in either shape.
type ExportedReport struct {
	FileID string          `json:"file_id"`
	Report json.RawMessage `json:"report"`
}

// ExportError names a file the server could not export.
type ExportError struct {
	FileID string `json:"file_id"`
	Error  string `json:"error"`
}

// UnmarshalJSON accepts the file id as a string or a number.
func (r *ExportedReport) UnmarshalJSON(data []byte) error {
	var wire struct {
		FileID flexID          `json:"file_id"`
		Report json.RawMessage `json:"report"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = ExportedReport{FileID: string(wire.FileID), Report: wire.Report}
	return nil
}

// UnmarshalJSON accepts the file id as a string or a number.
func (e *ExportError) UnmarshalJSON(data []byte) error {
	var wire struct {
		FileID flexID `json:"file_id"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = ExportError{FileID: string(wire.FileID), Error: wire.Error}
	return nil
}

// UploadResponse mirrors /api/upload. Processing happens later and is
// observed through the file list.
type UploadResponse struct {
	Message        string         `json:"message"`
	Filename       string         `json:"filename"`
	DetectionTypes map[string]any `json:"detection_types"`
}

// flexID is an id the server may send as a string or a number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*f = flexID(n.String())
	return nil
}

type fileIDsRequest struct {
	FileIDs []string `json:"file_ids"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(serverTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

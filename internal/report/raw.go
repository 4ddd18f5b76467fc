package report

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Raw is a report payload as received from the server. It is either Legacy
// or Current; ParseRaw decides which.
type Raw interface {
	isRaw()
}

// Legacy is the original payload shape: a bare list of detections.
type Legacy struct {
	Detections []Detection
}

// Current is the object payload shape.
type Current struct {
	Title          string
	File           string
	OverallResults []OverallResult
	Detections     []Detection
}

func (Legacy) isRaw()  {}
func (Current) isRaw() {}

// OverallResult is one whole-file measurement such as loudness.
type OverallResult struct {
	Type   string
	Result any
	Params map[string]any
}

// Detection is one flagged time range. Fields are never modified after
// decoding.
type Detection struct {
	Type      string
	Start     float64
	StartMMSS string
	End       *float64
	EndMMSS   string
	Details   string
	Params    map[string]any
	ID        ClipID
}

// HasClip reports whether the server extracted an audio clip for d.
func (d Detection) HasClip() bool {
	return d.ID != ""
}

// TimeRange renders "start - end", or only the start when the end is
// unknown.
func (d Detection) TimeRange() string {
	if d.End == nil || d.EndMMSS == "" || d.EndMMSS == "N/A" {
		return d.StartMMSS
	}
	return d.StartMMSS + " - " + d.EndMMSS
}

// ClipID identifies a server-extracted clip. The server has sent both
// strings and numbers.
type ClipID string

// UnmarshalJSON accepts a string, a number or null.
func (c *ClipID) UnmarshalJSON(data []byte) error {
	*c = ClipID(scalarString(data))
	return nil
}

// ParseRaw decides the payload shape. An object is Current; anything else
// that is valid JSON is treated as a legacy detection list. Only bytes that
// are not JSON at all produce an error.
func ParseRaw(data []byte) (Raw, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, &MalformedDataError{Err: fmt.Errorf("payload is not JSON")}
	}

	switch trimmed[0] {
	case '{':
		var cur Current
		if err := json.Unmarshal(trimmed, &cur); err != nil {
			return Current{}, nil
		}
		return cur, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Legacy{}, nil
		}
		return Legacy{Detections: decodeDetections(items)}, nil
	default:
		return Legacy{}, nil
	}
}

// UnmarshalJSON decodes the object shape field by field so that one bad
// field does not lose the whole report.
func (c *Current) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	c.Title = scalarString(fields["title"])
	c.File = scalarString(fields["file"])

	var results []json.RawMessage
	if raw, ok := fields["overall_results"]; ok {
		_ = json.Unmarshal(raw, &results)
	}
	for _, item := range results {
		var r OverallResult
		if err := json.Unmarshal(item, &r); err == nil {
			c.OverallResults = append(c.OverallResults, r)
		}
	}

	var detections []json.RawMessage
	if raw, ok := fields["in_file_detections"]; ok {
		_ = json.Unmarshal(raw, &detections)
	}
	c.Detections = decodeDetections(detections)
	return nil
}

// UnmarshalJSON decodes an overall result leniently.
func (r *OverallResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.Type = scalarString(fields["type"])
	r.Result = decodeAny(fields["result"])
	r.Params = decodeParams(fields["params"])
	return nil
}

// UnmarshalJSON decodes a detection leniently. Missing or mistyped fields
// take their zero value.
func (d *Detection) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	d.Type = scalarString(fields["type"])
	d.Start, _ = decodeFloat(fields["start"])
	if end, ok := decodeFloat(fields["end"]); ok {
		d.End = &end
	}
	d.StartMMSS = scalarString(fields["start_mmss"])
	d.EndMMSS = scalarString(fields["end_mmss"])
	d.Details = scalarString(fields["details"])
	d.Params = decodeParams(fields["params"])
	d.ID = ClipID(scalarString(fields["id"]))
	return nil
}

func decodeDetections(items []json.RawMessage) []Detection {
	out := make([]Detection, 0, len(items))
	for _, item := range items {
		var d Detection
		if err := json.Unmarshal(item, &d); err != nil {
			// Non-object entries still count as a detection with an empty type.
			d = Detection{}
		}
		out = append(out, d)
	}
	return out
}

func decodeParams(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil
	}
	return params
}

func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	switch v := decodeAny(raw).(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// scalarString renders a JSON scalar as text: strings verbatim, numbers in
// their shortest form, null and absent as "".
func scalarString(raw json.RawMessage) string {
	switch v := decodeAny(raw).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return string(bytes.TrimSpace(raw))
	}
}

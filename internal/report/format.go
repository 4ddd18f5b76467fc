package report

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatValue renders a parameter value. The unit is inferred from the
// parameter name: *_ms, *duration* and min_len are milliseconds, window and
// time are seconds, everything else is unit-less.
func FormatValue(name string, v any) string {
	switch val := v.(type) {
	case nil:
		return "N/A"
	case bool:
		if val {
			return "enabled"
		}
		return "disabled"
	case string:
		return val
	}

	f, ok := toFloat(v)
	if !ok {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "_ms") || strings.Contains(lower, "duration") || lower == "min_len":
		return formatNumber(f) + " ms"
	case strings.Contains(lower, "window") || strings.Contains(lower, "time"):
		return strconv.FormatFloat(f, 'f', 2, 64) + " s"
	default:
		return formatNumber(f)
	}
}

// FormatKey turns a parameter name into a label: "min_len" becomes
// "Min Len".
func FormatKey(name string) string {
	spaced := strings.ReplaceAll(name, "_", " ")
	// Casers carry state and are not safe to share.
	return cases.Title(language.Und, cases.NoLower).String(spaced)
}

// FormatResult renders an overall result value.
func FormatResult(v any) string {
	return FormatValue("", v)
}

// FormatParams renders params as "Key: value" pairs in key order.
func FormatParams(params map[string]any) []string {
	keys := SortedKeys(params)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, FormatKey(k)+": "+FormatValue(k, params[k]))
	}
	return out
}

// SortedKeys returns the keys of params in lexical order.
func SortedKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FormatSampleRate renders a sample rate in Hz.
func FormatSampleRate(v any) string {
	if f, ok := toFloat(v); ok {
		return formatNumber(f) + " Hz"
	}
	return FormatValue("", v)
}

// FormatChannels renders a channel count.
func FormatChannels(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return FormatValue("", v)
	}
	switch f {
	case 1:
		return "1 (mono)"
	case 2:
		return "2 (stereo)"
	default:
		return formatNumber(f)
	}
}

// FormatDuration renders seconds as MM:SS.ss.
func FormatDuration(v any) string {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return FormatValue("", v)
	}
	minutes := int(f / 60)
	seconds := f - float64(minutes*60)
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds)
}

// MetadataLines renders the reported metadata fields in a fixed order.
func MetadataLines(m Metadata) []string {
	var lines []string
	if m.SampleRate != nil {
		lines = append(lines, "Sample Rate: "+FormatSampleRate(m.SampleRate))
	}
	if m.Channels != nil {
		lines = append(lines, "Channels: "+FormatChannels(m.Channels))
	}
	if m.Duration != nil {
		lines = append(lines, "Duration: "+FormatDuration(m.Duration))
	}
	return lines
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

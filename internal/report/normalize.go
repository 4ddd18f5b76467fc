package report

import (
	"maps"
	"strings"
)

// Metadata holds the reserved overall-result types. A nil field was not
// reported.
type Metadata struct {
	SampleRate any
	Channels   any
	Duration   any
}

// IsEmpty reports whether no metadata was reported.
func (m Metadata) IsEmpty() bool {
	return m.SampleRate == nil && m.Channels == nil && m.Duration == nil
}

// Group is every detection of one type, in arrival order.
type Group struct {
	Type      string
	Instances []Detection
	// SharedDetails is the cleaned description common to all instances, or
	// "" when they disagree or nothing is left after cleaning.
	SharedDetails string
	// SharedParams are the first instance's params.
	SharedParams map[string]any
}

// ParamsAgree reports whether every instance carries the same params as the
// first. Normalize does not depend on it.
func (g Group) ParamsAgree() bool {
	for _, d := range g.Instances[min(1, len(g.Instances)):] {
		if !paramsEqual(g.SharedParams, d.Params) {
			return false
		}
	}
	return true
}

// Canonical is the normalized report consumed by display and export.
type Canonical struct {
	Title          string
	File           string
	Metadata       Metadata
	OverallResults []OverallResult
	Groups         []Group
}

// IssueCount totals detections across groups.
func (c Canonical) IssueCount() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Instances)
	}
	return n
}

// DisplayName returns the title, then the file name.
func (c Canonical) DisplayName() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	return c.File
}

// Normalize converts a raw payload into its canonical form. It never fails;
// missing collections become empty and unknown types form their own group.
func Normalize(raw Raw, fallbackFile string) Canonical {
	var (
		title      string
		file       string
		results    []OverallResult
		detections []Detection
	)
	switch r := raw.(type) {
	case Current:
		title, file, results, detections = r.Title, r.File, r.OverallResults, r.Detections
	case *Current:
		if r != nil {
			title, file, results, detections = r.Title, r.File, r.OverallResults, r.Detections
		}
	case Legacy:
		detections = r.Detections
	case *Legacy:
		if r != nil {
			detections = r.Detections
		}
	}
	if strings.TrimSpace(file) == "" {
		file = fallbackFile
	}

	meta, overall := extractMetadata(results)
	return Canonical{
		Title:          title,
		File:           file,
		Metadata:       meta,
		OverallResults: overall,
		Groups:         groupDetections(detections),
	}
}

// NormalizeJSON parses and normalizes in one step. Bytes that are not JSON
// yield an empty report for fallbackFile.
func NormalizeJSON(data []byte, fallbackFile string) Canonical {
	raw, err := ParseRaw(data)
	if err != nil {
		return Normalize(Legacy{}, fallbackFile)
	}
	return Normalize(raw, fallbackFile)
}

func extractMetadata(results []OverallResult) (Metadata, []OverallResult) {
	var meta Metadata
	overall := make([]OverallResult, 0, len(results))
	for _, r := range results {
		switch strings.ToLower(r.Type) {
		case "samplerate":
			meta.SampleRate = r.Result
		case "channels":
			meta.Channels = r.Result
		case "duration":
			meta.Duration = r.Result
		default:
			overall = append(overall, r)
		}
	}
	return meta, overall
}

func groupDetections(detections []Detection) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, d := range detections {
		i, ok := index[d.Type]
		if !ok {
			i = len(groups)
			index[d.Type] = i
			groups = append(groups, Group{Type: d.Type})
		}
		groups[i].Instances = append(groups[i].Instances, d)
	}
	for i := range groups {
		first := groups[i].Instances[0]
		groups[i].SharedDetails = sharedDetails(groups[i].Type, groups[i].Instances)
		groups[i].SharedParams = maps.Clone(first.Params)
	}
	return groups
}

func sharedDetails(typ string, instances []Detection) string {
	shared := CleanDetails(typ, instances[0].Details)
	if shared == "" {
		return ""
	}
	for _, d := range instances[1:] {
		if CleanDetails(typ, d.Details) != shared {
			return ""
		}
	}
	return shared
}

func paramsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || FormatValue(k, av) != FormatValue(k, bv) {
			return false
		}
	}
	return true
}

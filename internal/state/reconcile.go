package state

import "github.com/five82/auqa/internal/auqa"

// ReconcileFiles decides whether a freshly polled list replaces the held
// one. It does when the length differs or next contains an id prev lacks;
// otherwise prev itself is returned so consumers can skip re-rendering.
func ReconcileFiles(prev, next []auqa.ProcessedFile) ([]auqa.ProcessedFile, bool) {
	if len(next) != len(prev) {
		return next, true
	}
	known := make(map[string]struct{}, len(prev))
	for _, f := range prev {
		known[f.ID] = struct{}{}
	}
	for _, f := range next {
		if _, ok := known[f.ID]; !ok {
			return next, true
		}
	}
	return prev, false
}

// ProcessedDateChanged reports whether id is in both lists with different
// processed dates, meaning its report was recomputed.
func ProcessedDateChanged(prev, next []auqa.ProcessedFile, id string) bool {
	if id == "" {
		return false
	}
	before, ok := findFile(prev, id)
	if !ok {
		return false
	}
	after, ok := findFile(next, id)
	if !ok {
		return false
	}
	return before.ProcessedDate != after.ProcessedDate
}

func findFile(files []auqa.ProcessedFile, id string) (auqa.ProcessedFile, bool) {
	for _, f := range files {
		if f.ID == id {
			return f, true
		}
	}
	return auqa.ProcessedFile{}, false
}

// Package report turns report payloads from the analysis server into the
// canonical structure used for display and export.
//
// Two payload shapes exist and both remain supported: a bare JSON list of
// detections (legacy) and an object with title, file, overall_results and
// in_file_detections (current). ParseRaw decides the shape once; Normalize
// does the rest and cannot fail.
//
// Normalize moves the samplerate, channels and duration overall results into
// Metadata, groups detections by exact type in first-seen order, and reduces
// each group's descriptions to a single shared string when every instance
// agrees after boilerplate cleanup. Shared params are taken from the first
// instance without checking the others; Group.ParamsAgree lets callers log
// when that assumption does not hold.
//
// The Format* helpers are presentation-time only and never alter the
// canonical data.
package report

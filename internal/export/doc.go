// Package export renders canonical reports as plain text documents and
// writes them to disk, one file per report.
package export

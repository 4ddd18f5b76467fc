// Package auqa provides an HTTP client for the AuQA analysis server API.
//
// # Endpoints
//
//   - GET  /api/files                     processed-file list
//   - GET  /api/files/{id}/report         raw report (legacy list or current object)
//   - GET  /api/queue/status?since=EPOCH  queue counts scoped to a session anchor
//   - POST /api/files/delete              {"file_ids": [...]} -> {"deleted": [...]}
//   - POST /api/files/export              {"file_ids": [...]} -> {"reports": [...], "errors": [...]}
//   - POST /api/upload                    multipart "file"
//   - GET  /api/files/{id}/clips/{clip}   extracted detection clip (played, not decoded here)
//   - GET  /api/health                    liveness
//
// # Request Handling
//
// Every request carries Accept: application/json, a User-Agent of auqa/0.1
// and an X-Request-ID generated per call so server logs can be correlated
// with client logs. JSON requests have a 30 second client timeout; uploads
// have none and rely on the caller's context.
//
// # Error Handling
//
// Connection failures, non-2xx responses and undecodable bodies all surface
// as *TransportError. Callers on the polling path absorb them; callers acting
// for the user return them.
//
// Report payloads are returned as raw bytes. Shape detection belongs to
// package report so it happens once, at the boundary.
package auqa

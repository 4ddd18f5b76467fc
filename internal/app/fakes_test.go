package app

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/playback"
)

type fakeAPI struct {
	mu sync.Mutex

	files      []auqa.ProcessedFile
	filesErr   error
	fileCalls  int
	reports    map[string][]byte
	reportErr  error
	reportHits map[string]int
	reportGate chan struct{}

	queue      auqa.QueueStatus
	queueErr   error
	queueSince []int64
	queueGate  chan struct{}

	deleted   []string
	exportRes auqa.ExportResponse
	exportErr error
	uploads   []string
}

func (f *fakeAPI) FetchFiles(context.Context) ([]auqa.ProcessedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileCalls++
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return append([]auqa.ProcessedFile(nil), f.files...), nil
}

func (f *fakeAPI) FetchReport(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	gate := f.reportGate
	if f.reportHits == nil {
		f.reportHits = map[string]int{}
	}
	f.reportHits[id]++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	data, ok := f.reports[id]
	if !ok {
		return nil, &auqa.TransportError{Op: "GET report", Status: 404}
	}
	return data, nil
}

func (f *fakeAPI) FetchQueueStatus(_ context.Context, since int64) (auqa.QueueStatus, error) {
	f.mu.Lock()
	f.queueSince = append(f.queueSince, since)
	gate := f.queueGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue, f.queueErr
}

func (f *fakeAPI) DeleteFiles(_ context.Context, ids []string) (auqa.DeleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []auqa.ProcessedFile
	var deleted []string
	for _, file := range f.files {
		if containsID(ids, file.ID) {
			deleted = append(deleted, file.ID)
			continue
		}
		kept = append(kept, file)
	}
	f.files = kept
	f.deleted = append(f.deleted, deleted...)
	return auqa.DeleteResponse{Deleted: deleted}, nil
}

func (f *fakeAPI) ExportReports(context.Context, []string) (auqa.ExportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exportRes, f.exportErr
}

func (f *fakeAPI) Upload(_ context.Context, name string, body io.Reader) (auqa.UploadResponse, error) {
	if _, err := io.ReadAll(body); err != nil {
		return auqa.UploadResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, name)
	return auqa.UploadResponse{Message: "File uploaded successfully"}, nil
}

func (f *fakeAPI) ClipURL(fileID, clipID string) string {
	return "http://server/api/files/" + fileID + "/clips/" + clipID
}

func (f *fakeAPI) set(fn func(*fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type memKV struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memKV) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

type recordingPlayer struct {
	mu      sync.Mutex
	sources []string
}

type stubHandle struct {
	once sync.Once
	done chan error
}

func (h *stubHandle) Stop()              { h.once.Do(func() { h.done <- nil }) }
func (h *stubHandle) Done() <-chan error { return h.done }

func (p *recordingPlayer) Start(_ context.Context, source string) (playback.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if source == "" {
		return nil, errors.New("empty source")
	}
	p.sources = append(p.sources, source)
	return &stubHandle{done: make(chan error, 1)}, nil
}

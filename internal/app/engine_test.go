package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/export"
	"github.com/five82/auqa/internal/playback"
	"github.com/five82/auqa/internal/session"
)

const clippingReport = `{"file":"a.wav","in_file_detections":[
  {"type":"Clipping","start":1,"start_mmss":"00:01.00","end":2,"end_mmss":"00:02.00","details":"Clipping detected","params":{"threshold":0.95},"id":"c1"}
]}`

type testEnv struct {
	api    *fakeAPI
	engine *Engine
	player *recordingPlayer
	dir    string
	now    int64
}

func newTestEnv(t *testing.T, api *fakeAPI) *testEnv {
	t.Helper()
	env := &testEnv{api: api, player: &recordingPlayer{}, dir: t.TempDir(), now: 1000}
	clock := session.NewClock(&memKV{}, session.WithNow(func() time.Time { return time.Unix(env.now, 0) }))
	env.engine = NewEngine(Deps{
		API:     api,
		Clock:   clock,
		Player:  env.player,
		Writer:  export.NewWriter(env.dir, 0),
		Now:     func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
		Cadence: Cadence{Active: time.Second, Idle: 5 * time.Second},
	})
	env.engine.files.afterFunc = func(_ time.Duration, f func()) { f() }
	t.Cleanup(env.engine.Stop)
	return env
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEngine_QueuePollUsesAnchorAndResetClearsCounts(t *testing.T) {
	api := &fakeAPI{queue: auqa.QueueStatus{Total: 4, Completed: 1, Queued: 3}}
	env := newTestEnv(t, api)
	ctx := context.Background()

	env.engine.queue.Tick(ctx)
	if got := env.engine.QueueStatus(); got.Total != 4 {
		t.Fatalf("QueueStatus = %#v, want total 4", got)
	}
	if api.queueSince[0] != 1000 {
		t.Fatalf("since = %d, want anchor 1000", api.queueSince[0])
	}

	env.now = 2000
	if anchor := env.engine.ResetSession(); anchor != 2000 {
		t.Fatalf("ResetSession = %d, want 2000", anchor)
	}
	if got := env.engine.QueueStatus(); got != (auqa.QueueStatus{}) {
		t.Fatalf("QueueStatus after reset = %#v, want zero before any poll", got)
	}

	api.set(func(f *fakeAPI) { f.queue = auqa.QueueStatus{Total: 1, InProgress: 1} })
	env.engine.queue.Tick(ctx)
	if last := api.queueSince[len(api.queueSince)-1]; last != 2000 {
		t.Fatalf("since after reset = %d, want 2000", last)
	}
	if got := env.engine.QueueStatus(); got.Total != 1 {
		t.Fatalf("QueueStatus = %#v, want new session counts", got)
	}
}

func TestEngine_InFlightPollFromOldSessionIsDropped(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{queue: auqa.QueueStatus{Total: 9, Queued: 9}, queueGate: gate}
	env := newTestEnv(t, api)

	done := make(chan struct{})
	go func() {
		env.engine.queue.Tick(context.Background())
		close(done)
	}()
	waitFor(t, "poll to start", func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.queueSince) == 1
	})

	env.engine.ResetSession()
	close(gate)
	<-done

	if got := env.engine.QueueStatus(); got != (auqa.QueueStatus{}) {
		t.Fatalf("QueueStatus = %#v, want zero; old-session poll leaked through", got)
	}
}

func TestEngine_QueueFailuresGoOffline(t *testing.T) {
	api := &fakeAPI{queue: auqa.QueueStatus{Total: 2, Queued: 2}}
	env := newTestEnv(t, api)
	ctx := context.Background()

	env.engine.queue.Tick(ctx)
	api.set(func(f *fakeAPI) { f.queueErr = &auqa.TransportError{Op: "GET /api/queue/status", Status: 500} })
	env.engine.queue.Tick(ctx)
	if env.engine.QueueStatus().Total != 2 {
		t.Fatal("single failure dropped the last good status")
	}
	env.engine.queue.Tick(ctx)
	snap := env.engine.Snapshot()
	if !snap.Queue.IsOffline() || snap.Queue.Status != (auqa.QueueStatus{}) {
		t.Fatalf("queue = %#v, want offline with zero counts", snap.Queue)
	}
}

func TestEngine_SelectLoadsReportAndToggles(t *testing.T) {
	api := &fakeAPI{
		files:   []auqa.ProcessedFile{{ID: "a", Name: "a.wav"}},
		reports: map[string][]byte{"a": []byte(clippingReport)},
	}
	env := newTestEnv(t, api)
	if err := env.engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	env.engine.Select("a")
	waitFor(t, "report", func() bool { return env.engine.SelectedReport() != nil })
	r := env.engine.SelectedReport()
	if len(r.Groups) != 1 || r.Groups[0].Type != "Clipping" {
		t.Fatalf("report = %#v", r)
	}

	env.engine.Select("a")
	if id, _ := env.engine.store.Selected(); id != "" || env.engine.SelectedReport() != nil {
		t.Fatal("selecting the selected file did not deselect it")
	}
}

func TestEngine_StaleReportIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{
		reports:    map[string][]byte{"a": []byte(clippingReport), "b": []byte(`[]`)},
		reportGate: gate,
	}
	env := newTestEnv(t, api)

	env.engine.Select("a")
	env.engine.Select("b")
	close(gate)

	waitFor(t, "report b", func() bool { return env.engine.SelectedReport() != nil })
	time.Sleep(20 * time.Millisecond)
	snap := env.engine.Snapshot()
	if snap.Selection.FileID != "b" || len(snap.Selection.Report.Groups) != 0 {
		t.Fatalf("selection = %#v, want empty report for b", snap.Selection)
	}
}

func TestEngine_ReportFailureShowsEmptyReport(t *testing.T) {
	api := &fakeAPI{
		files:     []auqa.ProcessedFile{{ID: "a", Name: "a.wav"}},
		reportErr: errors.New("boom"),
	}
	env := newTestEnv(t, api)
	_ = env.engine.Refresh(context.Background())

	env.engine.Select("a")
	waitFor(t, "empty report", func() bool { return env.engine.SelectedReport() != nil })
	r := env.engine.SelectedReport()
	if r.File != "a.wav" || r.IssueCount() != 0 {
		t.Fatalf("report = %#v, want empty report for a.wav", r)
	}
}

func TestEngine_ReprocessReloadsSelectedReport(t *testing.T) {
	api := &fakeAPI{
		files:   []auqa.ProcessedFile{{ID: "a", Name: "a.wav", ProcessedDate: "2025-01-01 00:00:00"}},
		reports: map[string][]byte{"a": []byte(`[]`)},
	}
	env := newTestEnv(t, api)
	ctx := context.Background()
	_ = env.engine.Refresh(ctx)

	env.engine.Select("a")
	waitFor(t, "first report", func() bool { return env.engine.SelectedReport() != nil })

	api.set(func(f *fakeAPI) {
		f.files[0].ProcessedDate = "2025-01-02 00:00:00"
		f.reports["a"] = []byte(clippingReport)
	})
	env.engine.files.Tick(ctx)

	waitFor(t, "reloaded report", func() bool {
		r := env.engine.SelectedReport()
		return r != nil && r.IssueCount() == 1
	})
	api.mu.Lock()
	hits := api.reportHits["a"]
	api.mu.Unlock()
	if hits != 2 {
		t.Fatalf("report fetched %d times, want 2", hits)
	}
}

func TestEngine_FilesCadenceFollowsQueueActivity(t *testing.T) {
	api := &fakeAPI{queue: auqa.QueueStatus{Total: 1, Queued: 1}}
	env := newTestEnv(t, api)

	env.engine.queue.Tick(context.Background())
	if got := env.engine.cadence.FilesInterval(env.engine.store.Active()); got != time.Second {
		t.Fatalf("interval while active = %v, want 1s", got)
	}
	api.set(func(f *fakeAPI) { f.queue = auqa.QueueStatus{Total: 1, Completed: 1} })
	env.engine.queue.Tick(context.Background())
	if got := env.engine.cadence.FilesInterval(env.engine.store.Active()); got != 5*time.Second {
		t.Fatalf("interval while idle = %v, want 5s", got)
	}
}

func TestEngine_ExportManyPartialSuccess(t *testing.T) {
	api := &fakeAPI{
		exportRes: auqa.ExportResponse{
			Reports: []auqa.ExportedReport{
				{FileID: "a", Report: []byte(clippingReport)},
				{FileID: "z", Report: []byte(`[{"type":"Hum","start_mmss":"00:03"}]`)},
			},
			Errors: []auqa.ExportError{{FileID: "b", Error: "missing"}},
		},
	}
	env := newTestEnv(t, api)

	res, err := env.engine.ExportMany(context.Background(), []string{"a", "b", "z"})
	if err != nil {
		t.Fatalf("ExportMany returned error: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].FileID != "b" {
		t.Fatalf("Failed = %#v", res.Failed)
	}
	if len(res.Written) != 2 {
		t.Fatalf("Written = %v", res.Written)
	}
	if filepath.Base(res.Written[0]) != "a_report.txt" || filepath.Base(res.Written[1]) != "File 2_report.txt" {
		t.Fatalf("Written = %v", res.Written)
	}
	data, err := os.ReadFile(res.Written[1])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "Hum: 1 issue(s)") {
		t.Fatalf("export body:\n%s", data)
	}
}

func TestEngine_ExportManyNothingReturned(t *testing.T) {
	api := &fakeAPI{exportRes: auqa.ExportResponse{Errors: []auqa.ExportError{{FileID: "a", Error: "x"}}}}
	env := newTestEnv(t, api)
	if _, err := env.engine.ExportMany(context.Background(), []string{"a"}); !errors.Is(err, ErrNothingExported) {
		t.Fatalf("ExportMany error = %v, want ErrNothingExported", err)
	}
}

func TestEngine_ExportOne(t *testing.T) {
	api := &fakeAPI{reports: map[string][]byte{"a": []byte(clippingReport)}}
	env := newTestEnv(t, api)

	path, err := env.engine.ExportOne(context.Background(), "a")
	if err != nil {
		t.Fatalf("ExportOne returned error: %v", err)
	}
	if filepath.Base(path) != "a_report.txt" {
		t.Fatalf("path = %q", path)
	}

	if _, err := env.engine.ExportOne(context.Background(), "missing"); !auqa.IsTransport(err) {
		t.Fatalf("ExportOne error = %v, want TransportError", err)
	}
}

func TestEngine_DeleteClearsSelectionAndReloads(t *testing.T) {
	api := &fakeAPI{
		files:   []auqa.ProcessedFile{{ID: "a"}, {ID: "b"}},
		reports: map[string][]byte{"a": []byte(`[]`)},
	}
	env := newTestEnv(t, api)
	ctx := context.Background()
	_ = env.engine.Refresh(ctx)
	env.engine.Select("a")

	resp, err := env.engine.Delete(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(resp.Deleted) != 1 {
		t.Fatalf("Deleted = %v", resp.Deleted)
	}
	snap := env.engine.Snapshot()
	if snap.Selection.FileID != "" {
		t.Fatal("selection not cleared after deleting the selected file")
	}
	if len(snap.Files.Files) != 1 || snap.Files.Files[0].ID != "b" {
		t.Fatalf("files = %#v, want reload after delete", snap.Files.Files)
	}
}

func TestEngine_UploadChecksExtensionAndReloads(t *testing.T) {
	api := &fakeAPI{}
	env := newTestEnv(t, api)
	ctx := context.Background()

	txt := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var unsupported *UnsupportedFileError
	if _, err := env.engine.Upload(ctx, txt); !errors.As(err, &unsupported) {
		t.Fatalf("Upload error = %v, want UnsupportedFileError", err)
	}

	wav := filepath.Join(t.TempDir(), "take.WAV")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	before := api.fileCalls
	if _, err := env.engine.Upload(ctx, wav); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if len(api.uploads) != 1 || api.fileCalls != before+1 {
		t.Fatalf("uploads=%v fileCalls=%d, want one upload and a reload", api.uploads, api.fileCalls)
	}
}

func TestEngine_TogglePlaybackUsesSelectedFile(t *testing.T) {
	api := &fakeAPI{reports: map[string][]byte{"a": []byte(clippingReport)}}
	env := newTestEnv(t, api)

	key := playback.Key{Type: "Clipping", ID: "c1"}
	if err := env.engine.TogglePlayback(context.Background(), key); !errors.Is(err, playback.ErrNoClip) {
		t.Fatalf("Toggle without selection = %v, want ErrNoClip", err)
	}

	env.engine.Select("a")
	if err := env.engine.TogglePlayback(context.Background(), key); err != nil {
		t.Fatalf("TogglePlayback returned error: %v", err)
	}
	if got := env.player.sources; len(got) != 1 || got[0] != "http://server/api/files/a/clips/c1" {
		t.Fatalf("sources = %v", got)
	}
	if k, ok := env.engine.Playing(); !ok || k != key {
		t.Fatalf("Playing = %v %v", k, ok)
	}

	env.engine.Select("a")
	if _, ok := env.engine.Playing(); ok {
		t.Fatal("playback continued after the selection changed")
	}
}

func TestEngine_StopDiscardsLateResults(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{queue: auqa.QueueStatus{Total: 3, Queued: 3}, queueGate: gate}
	env := newTestEnv(t, api)

	done := make(chan struct{})
	go func() {
		env.engine.queue.Tick(context.Background())
		close(done)
	}()
	waitFor(t, "poll to start", func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.queueSince) == 1
	})
	env.engine.Stop()
	close(gate)
	<-done

	if got := env.engine.QueueStatus(); got != (auqa.QueueStatus{}) {
		t.Fatalf("QueueStatus = %#v, want nothing applied after Stop", got)
	}
}

func TestEngine_StartRunsBothLines(t *testing.T) {
	api := &fakeAPI{
		files: []auqa.ProcessedFile{{ID: "a"}},
		queue: auqa.QueueStatus{Total: 1, Completed: 1},
	}
	env := newTestEnv(t, api)
	env.engine.Start(context.Background())

	waitFor(t, "first ticks", func() bool {
		snap := env.engine.Snapshot()
		return snap.Files.Loaded && snap.Queue.HasStatus
	})
	env.engine.Stop()
}

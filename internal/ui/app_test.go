package ui

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/export"
	"github.com/five82/auqa/internal/playback"
	"github.com/five82/auqa/internal/report"
	"github.com/five82/auqa/internal/state"
)

func TestEnterSelectsFileUnderCursor(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	m := newTestModel(t, fe)

	m, _ = press(m, "j")
	m, cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter should refresh the snapshot")
	}
	if !slices.Equal(fe.selected, []string{"b"}) {
		t.Fatalf("selected = %v, want [b]", fe.selected)
	}

	// Enter on the open file goes to the engine again, which deselects it.
	m, _ = press(m, "enter")
	if !slices.Equal(fe.selected, []string{"b", "b"}) {
		t.Fatalf("selected = %v, want [b b]", fe.selected)
	}
}

func TestCursorFollowsFileAcrossReorder(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	m := newTestModel(t, fe)
	m, _ = press(m, "j")

	files := fixtureFiles()
	fe.snap.Files.Files = []auqa.ProcessedFile{{ID: "c", Name: "new.wav"}, files[0], files[1]}
	m, _ = update(m, fetchSnapshotCmd(fe)())

	if f, _ := m.cursorFile(); f.ID != "b" {
		t.Fatalf("cursor on %q, want b", f.ID)
	}

	fe.snap.Files.Files = files[:1]
	m, _ = update(m, fetchSnapshotCmd(fe)())
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want clamped 0", m.cursor)
	}
}

func TestMarksArePrunedWhenFilesDisappear(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	m := newTestModel(t, fe)
	m, _ = press(m, "a")
	if len(m.marked) != 2 {
		t.Fatalf("marked = %v, want both", m.marked)
	}

	fe.snap.Files.Files = fixtureFiles()[1:]
	m, _ = update(m, fetchSnapshotCmd(fe)())
	if len(m.marked) != 1 || !m.marked["b"] {
		t.Fatalf("marked = %v, want only b", m.marked)
	}

	m, _ = press(m, "a")
	if len(m.marked) != 0 {
		t.Fatalf("second mark-all should clear, got %v", m.marked)
	}
}

func TestExportMarkedReportsPartialFailure(t *testing.T) {
	fe := &fakeEngine{
		snap: loadedSnapshot(),
		manyResult: export.Result{
			Written: []string{"/tmp/out/take1_report.txt"},
			Failed:  []auqa.ExportError{{FileID: "b", Error: "boom"}},
		},
	}
	m := newTestModel(t, fe)

	m, _ = press(m, "a")
	m, cmd := press(m, "X")
	if m.busy == "" {
		t.Fatal("busy should be set while exporting")
	}
	m, _ = run(t, m, cmd)

	if len(fe.exportMany) != 1 || !slices.Equal(fe.exportMany[0], []string{"a", "b"}) {
		t.Fatalf("ExportMany ids = %v, want [[a b]]", fe.exportMany)
	}
	if m.busy != "" {
		t.Fatalf("busy = %q after result", m.busy)
	}
	if m.flash.level != flashWarn || m.flash.text != "Exported 1 report to /tmp/out, 1 failed" {
		t.Fatalf("flash = %+v", m.flash)
	}
	if len(m.marked) != 0 {
		t.Fatalf("marks not cleared: %v", m.marked)
	}
}

func TestExportMarkedNothingWritten(t *testing.T) {
	fe := &fakeEngine{
		snap:       loadedSnapshot(),
		manyResult: export.Result{Failed: []auqa.ExportError{{FileID: "a"}, {FileID: "b"}}},
		manyErr:    errors.New("no reports were exported"),
	}
	m := newTestModel(t, fe)
	m, _ = press(m, "a")
	m, cmd := press(m, "X")
	m, _ = run(t, m, cmd)

	if m.flash.level != flashError || m.flash.text != "export: no reports were exported (2 failed)" {
		t.Fatalf("flash = %+v", m.flash)
	}
	if len(m.marked) != 2 {
		t.Fatalf("marks should survive a failed export, got %v", m.marked)
	}
}

func TestExportMarkedRequiresMarks(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	m := newTestModel(t, fe)
	m, cmd := press(m, "X")
	if cmd != nil || len(fe.exportMany) != 0 {
		t.Fatal("export ran without marks")
	}
	if m.flash.level != flashWarn {
		t.Fatalf("flash = %+v, want warning", m.flash)
	}
}

func TestExportOneUsesOpenReportInReportPane(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot(), exportPath: "/tmp/out/take2_report.txt"}
	fe.snap.Selection = state.Selection{FileID: "b", Generation: 1, Report: &report.Canonical{File: "take2.wav"}}
	m := newTestModel(t, fe)

	m, _ = press(m, "tab")
	m, cmd := press(m, "x")
	m, _ = run(t, m, cmd)

	if !slices.Equal(fe.exportOne, []string{"b"}) {
		t.Fatalf("ExportOne ids = %v, want [b]", fe.exportOne)
	}
	if m.flash.text != "Saved /tmp/out/take2_report.txt" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestDeleteAsksFirst(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot(), deleteResp: auqa.DeleteResponse{Deleted: []string{"a"}}}
	m := newTestModel(t, fe)

	m, _ = press(m, "d")
	if m.modal == nil {
		t.Fatal("delete should open a confirmation")
	}
	m, cmd := press(m, "n")
	if m.modal != nil || cmd != nil || len(fe.deleted) != 0 {
		t.Fatal("rejecting should close without deleting")
	}

	m, _ = press(m, "d")
	m, cmd = press(m, "y")
	if m.modal != nil {
		t.Fatal("modal still open after confirm")
	}
	m, cmd = update(m, cmd())
	m, _ = run(t, m, cmd)

	if len(fe.deleted) != 1 || !slices.Equal(fe.deleted[0], []string{"a"}) {
		t.Fatalf("deleted = %v, want [[a]]", fe.deleted)
	}
	if m.flash.text != "Deleted 1 file" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestDeleteMarkedReportsShortfall(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot(), deleteResp: auqa.DeleteResponse{Deleted: []string{"a"}}}
	m := newTestModel(t, fe)

	m, _ = press(m, "a")
	m, _ = press(m, "d")
	if c, ok := m.modal.(confirmModal); !ok || c.prompt != "Delete 2 files?" {
		t.Fatalf("modal = %#v", m.modal)
	}
	m, cmd := press(m, "y")
	m, cmd = update(m, cmd())
	m, _ = run(t, m, cmd)

	if m.flash.level != flashWarn || m.flash.text != "Deleted 1 of 2 files" {
		t.Fatalf("flash = %+v", m.flash)
	}
	if len(m.marked) != 0 {
		t.Fatalf("marks not cleared: %v", m.marked)
	}
}

func TestUploadPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	if err := os.WriteFile(path, []byte("RIFF!"), 0o644); err != nil {
		t.Fatal(err)
	}
	fe := &fakeEngine{snap: loadedSnapshot(), uploadResp: auqa.UploadResponse{Filename: "take.wav"}}
	m := newTestModel(t, fe)

	m, _ = press(m, "u")
	if _, ok := m.modal.(uploadModal); !ok {
		t.Fatalf("modal = %#v, want upload prompt", m.modal)
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(path)})
	m, cmd := press(m, "enter")
	if m.modal != nil {
		t.Fatal("prompt still open")
	}

	req, ok := cmd().(uploadRequestMsg)
	if !ok || req.path != path {
		t.Fatalf("request = %#v, want %q", req, path)
	}
	m, cmd = update(m, req)
	m, _ = run(t, m, cmd)

	if !slices.Equal(fe.uploads, []string{path}) {
		t.Fatalf("uploads = %v", fe.uploads)
	}
	if m.flash.text != "Uploaded take.wav (5 B), analysis queued" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestUploadPromptEscapeCancels(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	m := newTestModel(t, fe)
	m, _ = press(m, "u")
	m, cmd := press(m, "esc")
	if m.modal != nil || cmd != nil {
		t.Fatal("esc should close the prompt")
	}
}

func clippingSnapshot() state.Snapshot {
	s := loadedSnapshot()
	s.Selection = state.Selection{
		FileID:     "a",
		Generation: 3,
		Report: &report.Canonical{
			File: "take1.wav",
			Groups: []report.Group{{
				Type: "Clipping",
				Instances: []report.Detection{
					{Type: "Clipping", StartMMSS: "00:01", ID: "7"},
					{Type: "Clipping", StartMMSS: "00:05"},
				},
				SharedParams: map[string]any{"threshold": 0.95},
			}},
		},
	}
	return s
}

func TestPlaybackFollowsDetectionCursor(t *testing.T) {
	fe := &fakeEngine{snap: clippingSnapshot()}
	m := newTestModel(t, fe)
	if len(m.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.rows))
	}

	m, _ = press(m, "tab")
	m, cmd := press(m, " ")
	m, _ = run(t, m, cmd)
	want := playback.Key{Type: "Clipping", ID: "7"}
	if !slices.Equal(fe.toggled, []playback.Key{want}) {
		t.Fatalf("toggled = %v, want [%v]", fe.toggled, want)
	}

	m, _ = press(m, "n")
	if m.rowCursor != 1 {
		t.Fatalf("rowCursor = %d, want 1", m.rowCursor)
	}
	m, cmd = press(m, "p")
	if cmd != nil || len(fe.toggled) != 1 {
		t.Fatal("detection without clip should not play")
	}
	if m.flash.text != "No clip for this detection" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestPlaybackErrorIsShown(t *testing.T) {
	fe := &fakeEngine{snap: clippingSnapshot(), playErr: errors.New("play Clipping#7: exit status 1")}
	m := newTestModel(t, fe)
	m, cmd := press(m, "p")
	m, _ = run(t, m, cmd)
	if m.flash.level != flashError {
		t.Fatalf("flash = %+v, want error", m.flash)
	}
}

func TestDetectionCursorResetsForNewReport(t *testing.T) {
	fe := &fakeEngine{snap: clippingSnapshot()}
	m := newTestModel(t, fe)
	m, _ = press(m, "n")
	if m.rowCursor != 1 {
		t.Fatalf("rowCursor = %d, want 1", m.rowCursor)
	}

	// Same report on the next poll keeps the cursor.
	m, _ = update(m, fetchSnapshotCmd(fe)())
	if m.rowCursor != 1 {
		t.Fatalf("rowCursor = %d after identical snapshot, want 1", m.rowCursor)
	}

	fe.snap.Selection.Generation = 4
	m, _ = update(m, fetchSnapshotCmd(fe)())
	if m.rowCursor != 0 {
		t.Fatalf("rowCursor = %d after reload, want 0", m.rowCursor)
	}
}

func TestViewShowsReportAndQueue(t *testing.T) {
	fe := &fakeEngine{snap: clippingSnapshot(), anchor: 1}
	fe.snap.Queue = state.QueueView{
		HasStatus: true,
		Status:    auqa.QueueStatus{Total: 4, Completed: 2, InProgress: 1, Queued: 1},
	}
	m := newTestModel(t, fe)

	out := m.View()
	for _, want := range []string{"take1.wav", "2 issues", "clean", "1 hour ago", "Clipping", "Threshold: 0.950", "50%", "2/4 done"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewEmptyStates(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	fe.snap.Queue = state.QueueView{HasStatus: true}
	fe.snap.Selection = state.Selection{FileID: "b", Generation: 1, Report: &report.Canonical{File: "take2.wav"}}
	m := newTestModel(t, fe)

	out := m.View()
	for _, want := range []string{"No jobs in queue", "No issues detected"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	fe.snap.Selection = state.Selection{FileID: "b", Generation: 2, Loading: true}
	m, _ = update(m, fetchSnapshotCmd(fe)())
	if !strings.Contains(m.View(), "Loading report") {
		t.Error("view missing loading state")
	}
}

func TestInitialLoadFailureOffersRetry(t *testing.T) {
	fe := &fakeEngine{}
	fe.snap.Files = state.FilesView{LastError: errors.New("connection refused")}
	m := newTestModel(t, fe)

	out := m.View()
	for _, want := range []string{"Could not load files", "connection refused", "Press r to retry"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, cmd := press(m, "r")
	m, _ = run(t, m, cmd)
	if fe.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", fe.refreshes)
	}
	if m.flash.text != "File list reloaded" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestOfflineHeader(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	fe.snap.Queue = state.QueueView{ConsecutiveFailures: 2, LastError: errors.New("refused")}
	m := newTestModel(t, fe)
	if !strings.Contains(m.View(), "OFFLINE") {
		t.Fatal("header should show offline")
	}
}

func TestResetSession(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot(), anchor: 100}
	m := newTestModel(t, fe)
	m, _ = press(m, "R")
	if fe.resets != 1 || m.anchor != 101 {
		t.Fatalf("resets = %d anchor = %d", fe.resets, m.anchor)
	}
	if !strings.HasPrefix(m.flash.text, "New session started") {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestCycleThemePersists(t *testing.T) {
	prefs := &fakePrefs{name: "Kanagawa"}
	m := New(Options{Engine: &fakeEngine{}, Prefs: prefs})
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want persisted Kanagawa", m.theme.Name)
	}
	m, _ = press(m, "T")
	if m.theme.Name != "Slate" || prefs.name != "Slate" || prefs.sets != 1 {
		t.Fatalf("theme = %q prefs = %+v", m.theme.Name, prefs)
	}
}

func TestFlashExpiresOnTick(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	m := newTestModel(t, fe)
	m.setFlash(flashInfo, "hello")

	m, _ = update(m, tickMsg(m.flash.at.Add(time.Second)))
	if m.flash.text == "" {
		t.Fatal("flash cleared too early")
	}
	m, _ = update(m, tickMsg(m.flash.at.Add(FlashDuration+time.Second)))
	if m.flash.text != "" {
		t.Fatalf("flash = %q, want cleared", m.flash.text)
	}
}

func TestStartupWarningIsShown(t *testing.T) {
	m := New(Options{Engine: &fakeEngine{}, Warning: "server is not responding"})
	if m.flash.level != flashWarn || m.flash.text != "server is not responding" {
		t.Fatalf("flash = %+v", m.flash)
	}
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	fe := &fakeEngine{snap: loadedSnapshot()}
	m := newTestModel(t, fe)
	m, _ = press(m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help not shown")
	}
	m, cmd := press(m, "q")
	if m.showHelp || cmd != nil {
		t.Fatal("key should only close help")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeEngine{snap: loadedSnapshot()})
	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not return tea.Quit")
	}
}

func TestCompactLayoutShowsFocusedPaneOnly(t *testing.T) {
	fe := &fakeEngine{snap: clippingSnapshot()}
	m := newTestModel(t, fe)
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 30})

	out := m.View()
	if !strings.Contains(out, "Files (2)") || strings.Contains(out, "Detections") {
		t.Fatal("compact layout should show only the file list")
	}
	m, _ = press(m, "tab")
	out = m.View()
	if strings.Contains(out, "Files (2)") || !strings.Contains(out, "Detections (2)") {
		t.Fatal("compact layout should show only the report after tab")
	}
}

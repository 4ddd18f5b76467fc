package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/export"
	"github.com/five82/auqa/internal/playback"
	"github.com/five82/auqa/internal/state"
)

type fakeEngine struct {
	snap   state.Snapshot
	anchor int64

	selected   []string
	refreshes  int
	refreshErr error
	resets     int

	toggled    []playback.Key
	playing    playback.Key
	isPlaying  bool
	playErr    error
	exportOne  []string
	exportPath string
	exportMany [][]string
	manyResult export.Result
	manyErr    error
	deleted    [][]string
	deleteResp auqa.DeleteResponse
	uploads    []string
	uploadResp auqa.UploadResponse
}

func (f *fakeEngine) Snapshot() state.Snapshot { return f.snap }
func (f *fakeEngine) Anchor() int64            { return f.anchor }
func (f *fakeEngine) Select(id string)         { f.selected = append(f.selected, id) }

func (f *fakeEngine) Refresh(context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeEngine) ResetSession() int64 {
	f.resets++
	f.anchor++
	return f.anchor
}

func (f *fakeEngine) TogglePlayback(_ context.Context, key playback.Key) error {
	f.toggled = append(f.toggled, key)
	return f.playErr
}

func (f *fakeEngine) Playing() (playback.Key, bool) { return f.playing, f.isPlaying }

func (f *fakeEngine) ExportOne(_ context.Context, id string) (string, error) {
	f.exportOne = append(f.exportOne, id)
	return f.exportPath, nil
}

func (f *fakeEngine) ExportMany(_ context.Context, ids []string) (export.Result, error) {
	f.exportMany = append(f.exportMany, ids)
	return f.manyResult, f.manyErr
}

func (f *fakeEngine) Delete(_ context.Context, ids []string) (auqa.DeleteResponse, error) {
	f.deleted = append(f.deleted, ids)
	return f.deleteResp, nil
}

func (f *fakeEngine) Upload(_ context.Context, path string) (auqa.UploadResponse, error) {
	f.uploads = append(f.uploads, path)
	return f.uploadResp, nil
}

type fakePrefs struct {
	name string
	sets int
}

func (p *fakePrefs) Theme() string { return p.name }

func (p *fakePrefs) SetTheme(name string) error {
	p.name = name
	p.sets++
	return nil
}

func fixtureFiles() []auqa.ProcessedFile {
	return []auqa.ProcessedFile{
		{ID: "a", Name: "take1.wav", IssueCount: 2, ProcessedDate: "2026-10-15 09:00:00"},
		{ID: "b", Name: "take2.wav", ProcessedDate: "2026-10-15 09:30:00"},
	}
}

func loadedSnapshot() state.Snapshot {
	return state.Snapshot{Files: state.FilesView{Files: fixtureFiles(), Loaded: true, Version: 1}}
}

// newTestModel returns a sized model that has seen one snapshot. The clock
// sits one hour after the first fixture file was processed.
func newTestModel(t *testing.T, fe *fakeEngine) Model {
	t.Helper()
	m := New(Options{Engine: fe, Prefs: &fakePrefs{name: "Nightfox"}, ExportDir: "/tmp/out"})
	now := fixtureFiles()[0].ParsedProcessedDate().Add(time.Hour)
	m.now = func() time.Time { return now }
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(m, fetchSnapshotCmd(fe)())
	return m
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return update(m, msg)
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	m, _ = update(m, msg)
	return m, msg
}

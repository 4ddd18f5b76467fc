package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/config"
	"github.com/five82/auqa/internal/export"
	"github.com/five82/auqa/internal/logging"
	"github.com/five82/auqa/internal/playback"
	"github.com/five82/auqa/internal/state"
)

// Engine is the presentation API the model drives. *app.Engine implements
// it.
type Engine interface {
	Snapshot() state.Snapshot
	Anchor() int64
	Select(id string)
	Refresh(ctx context.Context) error
	ResetSession() int64
	TogglePlayback(ctx context.Context, key playback.Key) error
	Playing() (playback.Key, bool)
	ExportOne(ctx context.Context, id string) (string, error)
	ExportMany(ctx context.Context, ids []string) (export.Result, error)
	Delete(ctx context.Context, ids []string) (auqa.DeleteResponse, error)
	Upload(ctx context.Context, path string) (auqa.UploadResponse, error)
}

// ThemeStore persists the theme choice.
type ThemeStore interface {
	Theme() string
	SetTheme(name string) error
}

// pane identifies the focused pane.
type pane int

const (
	paneFiles pane = iota
	paneReport
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Engine    Engine
	Prefs     ThemeStore
	APIURL    string
	ExportDir string
	LogPath   string
	// Warning is shown in the footer on start, e.g. a failed health check.
	Warning  string
	Logger   *slog.Logger
	PollTick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	engine    Engine
	prefs     ThemeStore
	logger    *slog.Logger
	apiURL    string
	exportDir string
	logPath   string
	pollTick  time.Duration
	keys      keyMap
	now       func() time.Time

	// UI state
	theme   Theme
	width   int
	height  int
	ready   bool
	focused pane

	// Data state
	snapshot    state.Snapshot
	anchor      int64
	playing     playback.Key
	isPlaying   bool
	lastUpdated time.Time

	// File list state
	cursor int
	marked map[string]bool

	// Report state
	reportViewport viewport.Model
	rows           []detectionRow
	rowCursor      int
	shownReport    reportIdentity

	// Overlays
	showHelp bool
	modal    Modal

	// Footer
	busy  string
	flash flash
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	themeName := ""
	if opts.Prefs != nil {
		themeName = opts.Prefs.Theme()
	}

	m := Model{
		ctx:       ctx,
		engine:    opts.Engine,
		prefs:     opts.Prefs,
		logger:    logging.OrNop(opts.Logger).With(logging.Component("ui")),
		apiURL:    opts.APIURL,
		exportDir: opts.ExportDir,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		keys:      DefaultKeyMap(),
		now:       time.Now,
		theme:     GetTheme(themeName),
		marked:    make(map[string]bool),
	}
	if opts.Warning != "" {
		m.setFlash(flashWarn, opts.Warning)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.engine),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.reportViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.resizeReport()
		m.refreshReport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.applySnapshot(msg)
		return m, nil

	case actionMsg:
		m.busy = ""
		if msg.clearMarks {
			clear(m.marked)
		}
		switch {
		case msg.err != nil:
			m.logger.Debug("action failed", logging.Error(msg.err))
			m.setFlash(flashError, msg.err.Error())
		case msg.warn:
			m.setFlash(flashWarn, msg.text)
		case msg.text != "":
			m.setFlash(flashInfo, msg.text)
		}
		return m, fetchSnapshotCmd(m.engine)

	case uploadRequestMsg:
		m.busy = "Uploading " + filepath.Base(msg.path)
		return m, uploadCmd(m.ctx, m.engine, msg.path)

	case deleteConfirmedMsg:
		m.busy = fmt.Sprintf("Deleting %d %s", len(msg.ids), plural(len(msg.ids), "file"))
		return m, deleteCmd(m.ctx, m.engine, msg.ids)
	}

	// Cursor blink and other input plumbing for an open modal.
	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		m.modal = modal
		if done {
			m.modal = nil
		}
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		m.modal = modal
		if done {
			m.modal = nil
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.focused == paneFiles {
			m.focused = paneReport
		} else {
			m.focused = paneFiles
		}
		m.refreshReport()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		m.busy = "Reloading files"
		return m, refreshCmd(m.ctx, m.engine)

	case key.Matches(msg, m.keys.ResetSession):
		anchor := m.engine.ResetSession()
		m.anchor = anchor
		m.setFlash(flashInfo, "New session started at "+time.Unix(anchor, 0).Format("15:04:05"))
		return m, fetchSnapshotCmd(m.engine)

	case key.Matches(msg, m.keys.Upload):
		m.modal = newUploadModal()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ExportOne):
		return m.exportCurrent()

	case key.Matches(msg, m.keys.ExportAll):
		return m.exportMarked()

	case key.Matches(msg, m.keys.Delete):
		return m.confirmDelete()

	case key.Matches(msg, m.keys.MarkAll):
		m.toggleMarkAll()
		return m, nil

	case key.Matches(msg, m.keys.Mark):
		if f, ok := m.cursorFile(); ok {
			if m.marked[f.ID] {
				delete(m.marked, f.ID)
			} else {
				m.marked[f.ID] = true
			}
			m.moveCursor(1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.focused == paneReport {
			return m.togglePlayback()
		}
		f, ok := m.cursorFile()
		if !ok {
			return m, nil
		}
		m.engine.Select(f.ID)
		return m, fetchSnapshotCmd(m.engine)

	case key.Matches(msg, m.keys.Play):
		return m.togglePlayback()

	case key.Matches(msg, m.keys.NextDetection):
		m.moveRow(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevDetection):
		m.moveRow(-1)
		return m, nil
	}

	if m.focused == paneReport {
		return m.handleReportKey(msg)
	}
	return m.handleFilesKey(msg)
}

// handleFilesKey moves the file cursor.
func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Files.Files)
	if count == 0 {
		return m, nil
	}
	half := max(m.contentHeight()/2, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.moveCursor(half)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.moveCursor(-half)
	}
	return m, nil
}

// handleReportKey moves between detections, or scrolls when there are none.
func (m Model) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.rows) > 0 {
			m.moveRow(1)
		} else {
			m.reportViewport.ScrollDown(1)
		}
	case key.Matches(msg, m.keys.Up):
		if len(m.rows) > 0 {
			m.moveRow(-1)
		} else {
			m.reportViewport.ScrollUp(1)
		}
	case key.Matches(msg, m.keys.Top):
		m.moveRow(-len(m.rows))
		m.reportViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.moveRow(len(m.rows))
		m.reportViewport.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.reportViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.reportViewport.HalfPageUp()
	}
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.flash.text != "" && now.Sub(m.flash.at) > FlashDuration {
		m.flash = flash{}
	}
	return m, tea.Batch(
		fetchSnapshotCmd(m.engine),
		tickCmd(m.pollTick),
	)
}

// applySnapshot stores fresh engine state and keeps the cursor on the same
// file when it still exists.
func (m *Model) applySnapshot(msg snapshotMsg) {
	prevID := ""
	if f, ok := m.cursorFile(); ok {
		prevID = f.ID
	}

	m.snapshot = msg.snapshot
	m.anchor = msg.anchor
	m.playing = msg.playing
	m.isPlaying = msg.isPlaying
	m.lastUpdated = m.now()

	files := m.snapshot.Files.Files
	m.cursor = min(m.cursor, max(len(files)-1, 0))
	for i, f := range files {
		if f.ID == prevID {
			m.cursor = i
			break
		}
	}

	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.ID] = true
	}
	for id := range m.marked {
		if !present[id] {
			delete(m.marked, id)
		}
	}

	m.refreshReport()
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefs != nil {
		if err := m.prefs.SetTheme(m.theme.Name); err != nil {
			m.logger.Warn("save theme failed", logging.Error(err))
		}
	}
	m.refreshReport()
}

func (m *Model) moveCursor(delta int) {
	count := len(m.snapshot.Files.Files)
	if count == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), count-1)
}

func (m *Model) toggleMarkAll() {
	files := m.snapshot.Files.Files
	if len(files) == 0 {
		return
	}
	if len(m.marked) == len(files) {
		clear(m.marked)
		return
	}
	for _, f := range files {
		m.marked[f.ID] = true
	}
}

// cursorFile returns the file under the cursor.
func (m Model) cursorFile() (auqa.ProcessedFile, bool) {
	files := m.snapshot.Files.Files
	if m.cursor < 0 || m.cursor >= len(files) {
		return auqa.ProcessedFile{}, false
	}
	return files[m.cursor], true
}

// markedIDs returns marked ids in list order.
func (m Model) markedIDs() []string {
	var ids []string
	for _, f := range m.snapshot.Files.Files {
		if m.marked[f.ID] {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// exportCurrent exports the open report from the report pane, otherwise the
// file under the cursor.
func (m Model) exportCurrent() (tea.Model, tea.Cmd) {
	id, name := "", ""
	if m.focused == paneReport && m.snapshot.Selection.FileID != "" {
		id = m.snapshot.Selection.FileID
		name = m.fileName(id)
	} else if f, ok := m.cursorFile(); ok {
		id, name = f.ID, f.Name
	}
	if id == "" {
		m.setFlash(flashWarn, "No file to export")
		return m, nil
	}
	m.busy = "Exporting " + name
	return m, exportOneCmd(m.ctx, m.engine, id, name)
}

func (m Model) exportMarked() (tea.Model, tea.Cmd) {
	ids := m.markedIDs()
	if len(ids) == 0 {
		m.setFlash(flashWarn, "Mark files with m first")
		return m, nil
	}
	m.busy = fmt.Sprintf("Exporting %d %s", len(ids), plural(len(ids), "report"))
	return m, exportManyCmd(m.ctx, m.engine, ids, m.exportDir)
}

// confirmDelete asks before deleting the marked files, or the file under the
// cursor when nothing is marked.
func (m Model) confirmDelete() (tea.Model, tea.Cmd) {
	ids := m.markedIDs()
	name := ""
	if len(ids) == 0 {
		f, ok := m.cursorFile()
		if !ok {
			return m, nil
		}
		ids, name = []string{f.ID}, f.Name
	} else if len(ids) == 1 {
		name = m.fileName(ids[0])
	}
	m.modal = newDeleteModal(ids, name)
	return m, nil
}

func (m Model) togglePlayback() (tea.Model, tea.Cmd) {
	if m.rowCursor < 0 || m.rowCursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.rowCursor]
	if !row.hasClip {
		m.setFlash(flashWarn, "No clip for this detection")
		return m, nil
	}
	return m, playCmd(m.ctx, m.engine, row.key)
}

func (m Model) fileName(id string) string {
	for _, f := range m.snapshot.Files.Files {
		if f.ID == id {
			return f.Name
		}
	}
	return id
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// contentHeight is the height left for the panes.
func (m Model) contentHeight() int {
	return max(m.height-3, 3) // header, command bar, footer
}

// paneWidths splits the width between the file list and the report. In
// compact mode each pane gets the full width and only the focused one shows.
func (m Model) paneWidths() (int, int) {
	if m.width < LayoutCompactWidth {
		return m.width, m.width
	}
	files := m.width * 40 / 100
	if m.width >= LayoutExtraWideWidth {
		files = m.width * 30 / 100
	}
	return files, m.width - files
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot  state.Snapshot
	anchor    int64
	playing   playback.Key
	isPlaying bool
}

// actionMsg reports the outcome of a user action.
type actionMsg struct {
	text       string
	warn       bool
	err        error
	clearMarks bool
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(engine Engine) tea.Cmd {
	return func() tea.Msg {
		key, playing := engine.Playing()
		return snapshotMsg{
			snapshot:  engine.Snapshot(),
			anchor:    engine.Anchor(),
			playing:   key,
			isPlaying: playing,
		}
	}
}

func refreshCmd(ctx context.Context, engine Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		if err := engine.Refresh(ctx); err != nil {
			return actionMsg{err: fmt.Errorf("reload files: %w", err)}
		}
		return actionMsg{text: "File list reloaded"}
	}
}

func exportOneCmd(ctx context.Context, engine Engine, id, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		path, err := engine.ExportOne(ctx, id)
		if err != nil {
			return actionMsg{err: fmt.Errorf("export %s: %w", name, err)}
		}
		return actionMsg{text: "Saved " + path}
	}
}

func exportManyCmd(ctx context.Context, engine Engine, ids []string, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		res, err := engine.ExportMany(ctx, ids)
		written, failed := len(res.Written), len(res.Failed)
		if err != nil && written == 0 {
			if failed > 0 {
				err = fmt.Errorf("%w (%d failed)", err, failed)
			}
			return actionMsg{err: fmt.Errorf("export: %w", err)}
		}
		text := fmt.Sprintf("Exported %d %s to %s", written, plural(written, "report"), dir)
		if failed > 0 {
			text += fmt.Sprintf(", %d failed", failed)
		}
		return actionMsg{text: text, warn: failed > 0 || err != nil, clearMarks: true}
	}
}

func deleteCmd(ctx context.Context, engine Engine, ids []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		resp, err := engine.Delete(ctx, ids)
		if err != nil {
			return actionMsg{err: fmt.Errorf("delete: %w", err)}
		}
		n := len(resp.Deleted)
		if n < len(ids) {
			return actionMsg{
				text:       fmt.Sprintf("Deleted %d of %d files", n, len(ids)),
				warn:       true,
				clearMarks: true,
			}
		}
		return actionMsg{text: fmt.Sprintf("Deleted %d %s", n, plural(n, "file")), clearMarks: true}
	}
}

func uploadCmd(ctx context.Context, engine Engine, path string) tea.Cmd {
	return func() tea.Msg {
		resolved, err := config.ExpandPath(path)
		if err != nil {
			return actionMsg{err: fmt.Errorf("upload: %w", err)}
		}
		size := ""
		if info, err := os.Stat(resolved); err == nil {
			size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
		}

		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		resp, err := engine.Upload(ctx, resolved)
		if err != nil {
			return actionMsg{err: fmt.Errorf("upload: %w", err)}
		}
		name := resp.Filename
		if name == "" {
			name = filepath.Base(resolved)
		}
		return actionMsg{text: "Uploaded " + name + size + ", analysis queued"}
	}
}

func playCmd(ctx context.Context, engine Engine, key playback.Key) tea.Cmd {
	return func() tea.Msg {
		if err := engine.TogglePlayback(ctx, key); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

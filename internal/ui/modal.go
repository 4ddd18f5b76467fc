package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// uploadRequestMsg asks the model to upload a local file.
type uploadRequestMsg struct {
	path string
}

// deleteConfirmedMsg asks the model to delete files after confirmation.
type deleteConfirmedMsg struct {
	ids []string
}

// uploadModal prompts for the path of an audio file.
type uploadModal struct {
	input textinput.Model
}

func newUploadModal() uploadModal {
	in := textinput.New()
	in.Placeholder = "~/recordings/take1.wav"
	in.Prompt = "> "
	in.CharLimit = 4096
	in.Width = 48
	in.Focus()
	return uploadModal{input: in}
}

func (u uploadModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Escape):
			return u, nil, true
		case key.Matches(k, keys.Confirm):
			path := strings.TrimSpace(u.input.Value())
			if path == "" {
				return u, nil, true
			}
			return u, func() tea.Msg { return uploadRequestMsg{path: path} }, true
		}
	}
	var cmd tea.Cmd
	u.input, cmd = u.input.Update(msg)
	return u, cmd, false
}

func (u uploadModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Upload audio file"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(u.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("wav, mp3, flac, ogg or m4a"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter upload · esc cancel"))
	return placeModal(theme, width, height, 56, b.String())
}

// confirmModal asks before deleting files from the server.
type confirmModal struct {
	ids    []string
	prompt string
}

// newDeleteModal builds the prompt; name labels a single file.
func newDeleteModal(ids []string, name string) confirmModal {
	prompt := "Delete " + name + "?"
	if len(ids) > 1 {
		prompt = "Delete " + strconv.Itoa(len(ids)) + " files?"
	}
	return confirmModal{ids: ids, prompt: prompt}
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Accept):
		ids := c.ids
		return c, func() tea.Msg { return deleteConfirmedMsg{ids: ids} }, true
	case key.Matches(k, keys.Reject):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render(c.prompt))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Reports and clips are removed from the server."))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("y delete · n cancel"))
	return placeModal(theme, width, height, 52, b.String())
}

// placeModal centers a bordered box over the screen.
func placeModal(theme Theme, width, height, boxWidth int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

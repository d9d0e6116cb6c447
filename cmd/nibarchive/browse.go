package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/nib-archive/nib"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	classStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("#444444")).
			PaddingLeft(1)
)

// chrome is the number of screen lines used outside the list and pane.
const chrome = 6

type browseModel struct {
	archive  *nib.Archive
	filename string
	filter   textinput.Model
	pane     viewport.Model
	visible  []nib.ObjectIndex
	selected int
	rows     int
	width    int
}

func newBrowseModel(filename string, a *nib.Archive) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "class name"
	ti.Prompt = "/ "
	ti.Width = 30

	m := &browseModel{
		archive:  a,
		filename: filename,
		filter:   ti,
		pane:     viewport.New(60, 20),
		rows:     20,
		width:    100,
	}
	m.applyFilter()
	return m
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.rows = max(msg.Height-chrome, 3)
		m.pane.Width = max(msg.Width-m.listWidth()-3, 20)
		m.pane.Height = m.rows
		m.refreshPane()
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.filter.SetValue("")
				m.filter.Blur()
				m.applyFilter()
				return m, nil
			case "enter":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refreshPane()
			}
			return m, nil

		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.refreshPane()
			}
			return m, nil

		case "/":
			return m, m.filter.Focus()

		case "esc":
			if m.filter.Value() != "" {
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil

		case "enter":
			m.followRef()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(msg)
	return m, cmd
}

// current returns the selected object, if any is visible.
func (m *browseModel) current() (nib.ObjectIndex, bool) {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.selected], true
}

// applyFilter keeps the objects whose class name contains the filter text,
// case-insensitively, and keeps the selection on the same object when it
// is still visible.
func (m *browseModel) applyFilter() {
	prev, hadPrev := m.current()
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))

	m.visible = m.visible[:0]
	for i, obj := range m.archive.All() {
		class, err := m.archive.ClassName(obj.Class)
		if err != nil {
			continue
		}
		if query == "" || strings.Contains(strings.ToLower(class.Name), query) {
			m.visible = append(m.visible, i)
		}
	}

	m.selected = 0
	if hadPrev {
		for pos, i := range m.visible {
			if i == prev {
				m.selected = pos
				break
			}
		}
	}
	m.refreshPane()
}

// followRef selects the target of the selected object's first object
// reference, clearing the filter so the target is visible.
func (m *browseModel) followRef() {
	i, ok := m.current()
	if !ok {
		return
	}
	values, err := m.archive.ObjectValues(i)
	if err != nil {
		return
	}
	for _, v := range values {
		ref, ok := v.ObjectRef()
		if !ok || int(ref) >= len(m.archive.Objects) {
			continue
		}
		m.filter.SetValue("")
		m.visible = m.visible[:0]
		for j := range m.archive.Objects {
			m.visible = append(m.visible, nib.ObjectIndex(j))
		}
		m.selected = int(ref)
		m.refreshPane()
		return
	}
}

func (m *browseModel) refreshPane() {
	i, ok := m.current()
	if !ok {
		m.pane.SetContent(helpStyle.Render("no matching objects"))
		return
	}
	m.pane.SetContent(m.renderObject(i))
	m.pane.GotoTop()
}

func (m *browseModel) renderObject(i nib.ObjectIndex) string {
	a := m.archive
	var b strings.Builder

	class, _ := a.ObjectClass(i)
	fmt.Fprintf(&b, "#%d %s", i, classStyle.Render(class.Name))
	if len(class.Extras) > 0 {
		fmt.Fprintf(&b, " %s", typeStyle.Render(fmt.Sprint(class.Extras)))
	}
	b.WriteString("\n\n")

	values, err := a.ObjectValues(i)
	if err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
		return b.String()
	}
	if len(values) == 0 {
		b.WriteString(helpStyle.Render("no values"))
	}
	for _, v := range values {
		key, err := a.ValueKey(v)
		if err != nil {
			key = "?"
		}
		fmt.Fprintf(&b, "%s %s %s\n", key, typeStyle.Render(v.Type.String()), m.describe(v))
	}
	return b.String()
}

// describe renders a value payload for the property pane.
func (m *browseModel) describe(v nib.Value) string {
	switch v.Type {
	case nib.TypeObjectRef:
		ref, _ := v.ObjectRef()
		if class, err := m.archive.ObjectClass(ref); err == nil {
			return fmt.Sprintf("@%d %s", ref, classStyle.Render(class.Name))
		}
	case nib.TypeData:
		if utf8.Valid(v.Data) {
			return fmt.Sprintf("%q", truncate(string(v.Data), 80))
		}
		shown := v.Data
		if len(shown) > 32 {
			shown = shown[:32]
		}
		s := fmt.Sprintf("% x", shown)
		if len(v.Data) > len(shown) {
			s += fmt.Sprintf(" ... (%d bytes)", len(v.Data))
		}
		return s
	}
	return v.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func (m *browseModel) listWidth() int {
	return max(m.width/3, 24)
}

func (m *browseModel) renderList() string {
	var b strings.Builder
	start := 0
	if m.selected >= m.rows {
		start = m.selected - m.rows + 1
	}
	end := min(start+m.rows, len(m.visible))

	for pos := start; pos < end; pos++ {
		i := m.visible[pos]
		class, _ := m.archive.ObjectClass(i)
		line := truncate(fmt.Sprintf("%5d %s", i, class.Name), m.listWidth()-2)
		if pos == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(m.listWidth()).Render(b.String())
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NIB Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	fmt.Fprintf(&b, "  %d/%d objects\n\n", len(m.visible), len(m.archive.Objects))

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(),
		paneStyle.Render(m.pane.View()),
	))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter follow reference • pgup/pgdn scroll • q quit"))

	return b.String()
}

func runInteractive(filename string, a *nib.Archive) error {
	p := tea.NewProgram(newBrowseModel(filename, a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

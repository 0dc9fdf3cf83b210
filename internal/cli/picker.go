package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/benilovj/webby/pkg/fragment"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FragmentListModel - Interactive fragment selection
// =============================================================================

// FragmentListModel is the bubbletea model for interactive fragment selection.
type FragmentListModel struct {
	Fragments []*fragment.Fragment
	Cursor    int
	Selected  *fragment.Fragment
}

// NewFragmentListModel creates a new fragment list model.
func NewFragmentListModel(frags []*fragment.Fragment) FragmentListModel {
	return FragmentListModel{Fragments: frags}
}

func (m FragmentListModel) Init() tea.Cmd {
	return nil
}

func (m FragmentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Fragments)-1 {
				m.Cursor++
			}
		case "enter":
			if _, err := m.Fragments[m.Cursor].Name(); err != nil {
				return m, nil
			}
			m.Selected = m.Fragments[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FragmentListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Graph Fragment"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, f := range m.Fragments {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		name, err := f.Name()
		var status string
		if err != nil {
			status = StyleWarning.Render("!")
			name = "(malformed)"
		} else {
			status = StyleSuccess.Render("*")
		}

		detail := f.Renderer + " " + f.Format
		if f.NeedsMap() {
			detail += ", map"
		}
		line := fmt.Sprintf("%s%s %-25s  %s", cursor, status, name, listDimStyle.Render(detail))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if err != nil {
			b.WriteString(listDimStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s renderable   %s malformed\n",
		StyleSuccess.Render("*"), StyleWarning.Render("!")))

	return b.String()
}

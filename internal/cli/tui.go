package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// VersionPickerModel - Interactive version selection
// =============================================================================

// VersionPickerModel is the bubbletea model for choosing which installed
// versions to remove.
type VersionPickerModel struct {
	Specs    []*spec.Spec
	Cursor   int
	Marked   map[int]bool
	Done     bool
	Canceled bool
}

// NewVersionPickerModel creates a picker over specs.
func NewVersionPickerModel(specs []*spec.Spec) VersionPickerModel {
	return VersionPickerModel{Specs: specs, Marked: make(map[int]bool)}
}

func (m VersionPickerModel) Init() tea.Cmd {
	return nil
}

func (m VersionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Canceled = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Specs)-1 {
			m.Cursor++
		}
	case " ", "space", "x":
		m.Marked[m.Cursor] = !m.Marked[m.Cursor]
	case "a":
		all := len(m.Selected()) < len(m.Specs)
		for i := range m.Specs {
			m.Marked[i] = all
		}
	case "enter":
		if len(m.Selected()) == 0 {
			m.Marked[m.Cursor] = true
		}
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

// Selected returns the marked specs in list order.
func (m VersionPickerModel) Selected() []*spec.Spec {
	var out []*spec.Spec
	for i, s := range m.Specs {
		if m.Marked[i] {
			out = append(out, s)
		}
	}
	return out
}

func (m VersionPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Versions to Uninstall"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Specs))
	for i, s := range m.Specs {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.Marked[i] {
			mark = iconSuccess
		}
		rows = append(rows, []string{cursor, mark, s.Name, s.Version.String(), s.Platform})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Package", "Version", "Platform").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == m.Cursor:
				return listSelectedStyle
			case m.Marked[row]:
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d marked", m.Cursor+1, len(m.Specs), len(m.Selected()))))

	return b.String()
}

// chooseVersions runs the picker and returns the chosen specs.
func chooseVersions(matches []*spec.Spec) ([]*spec.Spec, error) {
	final, err := tea.NewProgram(NewVersionPickerModel(matches)).Run()
	if err != nil {
		return nil, fmt.Errorf("version picker: %w", err)
	}
	m := final.(VersionPickerModel)
	if m.Canceled || len(m.Selected()) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no version selected")
	}
	return m.Selected(), nil
}

// isInteractive reports whether stdin and stdout are terminals.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

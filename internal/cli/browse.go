package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/irvaudit/pkg/io"
	"github.com/matzehuels/irvaudit/pkg/raire"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command: an interactive pager over a
// solution file's assertions.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <solution.json>",
		Short: "Interactively browse a solution's assertions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envelope, err := io.ImportSolution(args[0])
			if err != nil {
				return err
			}
			if envelope.Error != nil {
				return fmt.Errorf("solution file records a failed solve: %w", envelope.Error)
			}
			if envelope.Solution == nil || len(envelope.Solution.Assertions) == 0 {
				printInfo("No assertions to browse")
				return nil
			}

			model := NewAssertionListModel(envelope.Solution, candidateNames(envelope.Metadata))
			program := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			final, err := program.Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if m, ok := final.(AssertionListModel); ok && m.Selected != nil {
				fmt.Println(assertionName(m.Selected.Assertion, m.Names))
				printKeyValue("Difficulty", strconv.FormatFloat(m.Selected.Difficulty, 'g', -1, 64))
				printKeyValue("Margin", strconv.Itoa(m.Selected.Margin))
			}
			return nil
		},
	}
}

// AssertionListModel is the bubbletea model for assertion browsing.
type AssertionListModel struct {
	Solution *raire.Result
	Names    []string
	Cursor   int
	Offset   int
	Height   int
	Selected *raire.AssertionAndDifficulty
}

// NewAssertionListModel creates the browse model for a solved contest.
func NewAssertionListModel(solution *raire.Result, names []string) AssertionListModel {
	return AssertionListModel{
		Solution: solution,
		Names:    names,
		Height:   15,
	}
}

// Init implements tea.Model.
func (m AssertionListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m AssertionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Solution.Assertions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &m.Solution.Assertions[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// View implements tea.Model.
func (m AssertionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Assertions"))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("(difficulty %g, margin %d)",
		m.Solution.Difficulty, m.Solution.Margin)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Solution.Assertions))
	for i := m.Offset; i < end; i++ {
		a := m.Solution.Assertions[i]
		line := fmt.Sprintf("%-40s  difficulty %-10g margin %d",
			assertionName(a.Assertion, m.Names), a.Difficulty, a.Margin)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

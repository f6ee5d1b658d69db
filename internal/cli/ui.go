package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/raire"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleHeader      = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleCell        = lipgloss.NewStyle().Foreground(colorWhite).PaddingRight(1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printKeyValue prints an aligned key/value detail line.
func printKeyValue(key, value string) {
	fmt.Println("  " + StyleDim.Render(key+":") + " " + StyleValue.Render(value))
}

// printFile prints the path of a produced file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("wrote") + " " + StyleValue.Render(path))
}

// writeFile writes data to path, or to stdout when path is empty.
func writeFile(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// =============================================================================
// Assertion Rendering
// =============================================================================

// assertionName renders an assertion compactly, using candidate names when
// available.
func assertionName(a assertion.Assertion, names []string) string {
	label := func(c int) string {
		if c < len(names) {
			return names[c]
		}
		return strconv.Itoa(c)
	}
	switch a := a.(type) {
	case assertion.NEB:
		return fmt.Sprintf("%s NEB %s", label(a.Winner), label(a.Loser))
	case assertion.NEN:
		continuing := make([]string, len(a.Continuing))
		for i, c := range a.Continuing {
			continuing[i] = label(c)
		}
		return fmt.Sprintf("%s NEN %s | {%s}", label(a.Winner), label(a.Loser), strings.Join(continuing, ","))
	default:
		return fmt.Sprintf("%v", a)
	}
}

// assertionTable renders the retained assertion set as a terminal table.
func assertionTable(result *raire.Result, names []string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return styleCell
		}).
		Headers("#", "ASSERTION", "DIFFICULTY", "MARGIN")
	for i, a := range result.Assertions {
		t.Row(
			strconv.Itoa(i),
			assertionName(a.Assertion, names),
			strconv.FormatFloat(a.Difficulty, 'g', 6, 64),
			strconv.Itoa(a.Margin),
		)
	}
	return t.Render()
}

// candidateNames extracts a "candidates" string list from problem metadata,
// tolerating the loose typing of decoded JSON.
func candidateNames(metadata map[string]any) []string {
	raw, ok := metadata["candidates"].([]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		names = append(names, s)
	}
	return names
}

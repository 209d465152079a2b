package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value)
var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(colorBlue)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	panelStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
)

// ConsoleNotifier renders display events as styled terminal output
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier creates a notifier writing to out
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Info renders an informational notice
func (n *ConsoleNotifier) Info(text string) {
	n.write(infoStyle.Render("ℹ " + text))
}

// Warning renders a warning notice
func (n *ConsoleNotifier) Warning(text string) {
	n.write(warningStyle.Render("⚠ " + text))
}

// Error renders an error notice
func (n *ConsoleNotifier) Error(text string) {
	n.write(errorStyle.Render("✗ " + text))
}

// Success renders a success notice
func (n *ConsoleNotifier) Success(text string) {
	n.write(successStyle.Render("✓ " + text))
}

// Field renders a labeled value; multi-line values get a bordered panel
func (n *ConsoleNotifier) Field(label, value string) {
	if strings.Contains(value, "\n") {
		n.write(labelStyle.Render(label+":") + "\n" + panelStyle.Render(value))
		return
	}
	n.write(labelStyle.Render(label+":") + " " + value)
}

func (n *ConsoleNotifier) write(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, s)
}

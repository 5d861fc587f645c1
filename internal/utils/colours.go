package utils

import "github.com/charmbracelet/lipgloss"

// ColourScheme is the Catppuccin Mocha subset the interface draws with.
type ColourScheme struct {
	Red      string
	Peach    string
	Yellow   string
	Green    string
	Blue     string
	Lavender string
	Text     string
	Subtext0 string
	Overlay1 string
	Surface1 string
	Surface0 string
	Base     string
}

var Colours = ColourScheme{
	Red:      "#f38ba8",
	Peach:    "#fab387",
	Yellow:   "#f9e2af",
	Green:    "#a6e3a1",
	Blue:     "#89b4fa",
	Lavender: "#b4befe",
	Text:     "#cdd6f4",
	Subtext0: "#a6adc8",
	Overlay1: "#7f849c",
	Surface1: "#45475a",
	Surface0: "#313244",
	Base:     "#1e1e2e",
}

// Styles holds the lipgloss styles shared by every view.
type Styles struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Selected lipgloss.Style
	Editing  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style
	Panel    lipgloss.Style
	Modal    lipgloss.Style
	Help     lipgloss.Style
	Prompt   lipgloss.Style
}

func NewStyles(c ColourScheme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Text)).
			Background(lipgloss.Color(c.Surface0)).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Lavender)),
		Text:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Overlay1)),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Subtext0)).
			Width(8),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Text)).
			Background(lipgloss.Color(c.Surface1)).
			Bold(true),
		Editing: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Peach)).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Red)).
			Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Yellow)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Green)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Surface1)).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Red)).
			Padding(1, 2).
			Width(56),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Overlay1)).Padding(0, 1),
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Blue)),
	}
}

// DefaultStyles is built from Colours.
var DefaultStyles = NewStyles(Colours)

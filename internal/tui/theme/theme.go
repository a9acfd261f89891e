// Package theme defines color themes for the ledgr terminal UI and CLI output.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Highlighted surface (active tab, selected row)
	Border       lipgloss.Color // Subtle borders
	BorderBright lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent lipgloss.Color // Accent-colored borders for focus states
	TextDim      lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted    lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary  lipgloss.Color // Primary content text
	Accent       lipgloss.Color // Primary accent (links, active states)
	AccentBright lipgloss.Color
	Green        lipgloss.Color // income
	Red          lipgloss.Color // expense
	Orange       lipgloss.Color // warnings, stale data
	Yellow       lipgloss.Color
}

// Active is the currently selected theme.
var Active = Ledgr

// Ledgr is the default theme, built on the web app's palette
// (teal, marine, turquoise, coral, spring, cream).
var Ledgr = Theme{
	Name:         "ledgr",
	Background:   lipgloss.Color("#1B2827"),
	Surface:      lipgloss.Color("#233433"),
	SurfaceHover: lipgloss.Color("#344C4B"),
	Border:       lipgloss.Color("#344C4B"),
	BorderBright: lipgloss.Color("#5A8282"),
	BorderAccent: lipgloss.Color("#8CBEBF"),
	TextDim:      lipgloss.Color("#5A8282"),
	TextMuted:    lipgloss.Color("#DFE0C3"),
	TextPrimary:  lipgloss.Color("#F5F5F0"),
	Accent:       lipgloss.Color("#8CBEBF"),
	AccentBright: lipgloss.Color("#FFFFFF"),
	Green:        lipgloss.Color("#8CBEBF"),
	Red:          lipgloss.Color("#E5765C"),
	Orange:       lipgloss.Color("#E5765C"),
	Yellow:       lipgloss.Color("#DFE0C3"),
}

// FlexokiDark is a warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderBright: lipgloss.Color("#575653"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Green:        lipgloss.Color("#879A39"),
	Red:          lipgloss.Color("#D14D41"),
	Orange:       lipgloss.Color("#DA702C"),
	Yellow:       lipgloss.Color("#D0A215"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderBright: lipgloss.Color("7"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Green:        lipgloss.Color("2"),
	Red:          lipgloss.Color("1"),
	Orange:       lipgloss.Color("3"),
	Yellow:       lipgloss.Color("3"),
}

// All available themes.
var All = []Theme{Ledgr, FlexokiDark, Terminal}

// ByName returns a theme by its name, defaulting to Ledgr.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Ledgr
}

// Names lists the available theme names.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

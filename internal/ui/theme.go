package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

type Theme struct {
	Name         string
	Header       lipgloss.Style
	Status       lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelBorder  lipgloss.Style
	PanelBody    lipgloss.Style
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
	Accent       lipgloss.Style
	Selected     lipgloss.Style
	Pass         lipgloss.Style
	Fail         lipgloss.Style
	Pending      lipgloss.Style
	Muted        lipgloss.Style
	Locked       lipgloss.Style
	BarStart     color.Color
	BarEnd       color.Color
	Markdown     string
}

// ThemeFor returns the palette for a persisted theme name; anything but
// "dark" is light.
func ThemeFor(name string) Theme {
	if name == "dark" {
		return darkTheme()
	}
	return lightTheme()
}

func darkTheme() Theme {
	amber := lipgloss.Color("#FFC857")
	mint := lipgloss.Color("#67F0A8")
	brick := lipgloss.Color("#FF6F91")
	ink := lipgloss.Color("#0E1420")
	slate := lipgloss.Color("#1B2740")
	powder := lipgloss.Color("#EAF2FF")
	blue := lipgloss.Color("#5EEBFF")
	border := lipgloss.Color("#4B5F8A")

	return Theme{
		Name: "dark",
		Header: lipgloss.NewStyle().
			Background(ink).
			Foreground(powder).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Background(slate).
			Foreground(powder).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		PanelBorder: lipgloss.NewStyle().
			Foreground(border),
		PanelBody: lipgloss.NewStyle().
			Foreground(powder),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Background(ink).
			Foreground(powder).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		Accent:   lipgloss.NewStyle().Foreground(blue).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(ink).Background(blue).Bold(true),
		Pass:     lipgloss.NewStyle().Foreground(mint).Bold(true),
		Fail:     lipgloss.NewStyle().Foreground(brick).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(amber),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9CAAC6")),
		Locked:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5B6B8C")),
		BarStart: lipgloss.Color("#5EC2FF"),
		BarEnd:   lipgloss.Color("#79E6A6"),
		Markdown: "dark",
	}
}

func lightTheme() Theme {
	honey := lipgloss.Color("#B7791F")
	sage := lipgloss.Color("#2F855A")
	rose := lipgloss.Color("#C53030")
	paper := lipgloss.Color("#F7F9FC")
	mist := lipgloss.Color("#E2E8F0")
	ink := lipgloss.Color("#1A202C")
	sky := lipgloss.Color("#2B6CB0")

	return Theme{
		Name:        "light",
		Header:      lipgloss.NewStyle().Background(sky).Foreground(paper).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(mist).Foreground(ink).Padding(0, 1),
		PanelTitle:  lipgloss.NewStyle().Foreground(sky).Bold(true),
		PanelBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
		PanelBody:   lipgloss.NewStyle().Foreground(ink),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(sky).
			Background(paper).
			Foreground(ink).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(sky).Bold(true),
		Accent:       lipgloss.NewStyle().Foreground(sky).Bold(true),
		Selected:     lipgloss.NewStyle().Foreground(paper).Background(sky).Bold(true),
		Pass:         lipgloss.NewStyle().Foreground(sage).Bold(true),
		Fail:         lipgloss.NewStyle().Foreground(rose).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(honey),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#718096")),
		Locked:       lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
		BarStart:     lipgloss.Color("#3182CE"),
		BarEnd:       lipgloss.Color("#38A169"),
		Markdown:     "light",
	}
}

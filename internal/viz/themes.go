package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the player: the scene canvas, the energy panel and the
// status line.
type Theme struct {
	Name       string
	Title      lipgloss.Color
	Scene      lipgloss.Color
	Energy     lipgloss.Color
	Muted      lipgloss.Color
	Incomplete lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:       "cyberpunk",
		Title:      lipgloss.Color("#ff00ff"),
		Scene:      lipgloss.Color("#00ffff"),
		Energy:     lipgloss.Color("#ffff00"),
		Muted:      lipgloss.Color("#666666"),
		Incomplete: lipgloss.Color("#ff0000"),
	}

	ThemeRetro = Theme{
		Name:       "retro",
		Title:      lipgloss.Color("#88ff88"),
		Scene:      lipgloss.Color("#00ff00"),
		Energy:     lipgloss.Color("#00cc00"),
		Muted:      lipgloss.Color("#005500"),
		Incomplete: lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Title:      lipgloss.Color("#ffffff"),
		Scene:      lipgloss.Color("#cccccc"),
		Energy:     lipgloss.Color("#0088ff"),
		Muted:      lipgloss.Color("#888888"),
		Incomplete: lipgloss.Color("#ffaa00"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{ThemeCyberpunk, ThemeRetro, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one and returns it.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return CurrentTheme
		}
	}
	CurrentTheme = Themes[0]
	return CurrentTheme
}

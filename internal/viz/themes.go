package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lyricfield/internal/content"
)

// Theme defines the panel colors and the bubble palette.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color

	Song     lipgloss.Color
	Tag      lipgloss.Color
	Lyricist lipgloss.Color
	Composer lipgloss.Color
	Arranger lipgloss.Color
}

// Resolve colors a bubble by content type, and people by the role they hold
// on the most songs. Theme satisfies lifecycle.Styler.
func (t Theme) Resolve(typ content.Type, roles []content.RoleCount) string {
	switch typ {
	case content.TypeSong:
		return string(t.Song)
	case content.TypeTag:
		return string(t.Tag)
	case content.TypePerson:
		best := content.RoleCount{}
		for _, r := range roles {
			if r.Songs > best.Songs {
				best = r
			}
		}
		switch best.Role {
		case content.RoleComposer:
			return string(t.Composer)
		case content.RoleArranger:
			return string(t.Arranger)
		}
		return string(t.Lyricist)
	}
	return string(t.Text)
}

// Available themes
var (
	ThemeNight = Theme{
		Name:      "night",
		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#7dcfff"),
		Accent:    lipgloss.Color("#ff9e64"),
		Text:      lipgloss.Color("#c0caf5"),
		Muted:     lipgloss.Color("#565f89"),
		Warning:   lipgloss.Color("#e0af68"),
		Song:      lipgloss.Color("#7aa2f7"),
		Tag:       lipgloss.Color("#9ece6a"),
		Lyricist:  lipgloss.Color("#f7768e"),
		Composer:  lipgloss.Color("#e0af68"),
		Arranger:  lipgloss.Color("#bb9af7"),
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Warning:   lipgloss.Color("#ff8800"),
		Song:      lipgloss.Color("#00ffff"),
		Tag:       lipgloss.Color("#00ff00"),
		Lyricist:  lipgloss.Color("#ff00ff"),
		Composer:  lipgloss.Color("#ffff00"),
		Arranger:  lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Warning:   lipgloss.Color("#ffff00"),
		Song:      lipgloss.Color("#00ff00"),
		Tag:       lipgloss.Color("#008800"),
		Lyricist:  lipgloss.Color("#88ff88"),
		Composer:  lipgloss.Color("#ccffcc"),
		Arranger:  lipgloss.Color("#00cc00"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Warning:   lipgloss.Color("#ffcc00"),
		Song:      lipgloss.Color("#00a8cc"),
		Tag:       lipgloss.Color("#00ff88"),
		Lyricist:  lipgloss.Color("#ffd700"),
		Composer:  lipgloss.Color("#ff9f43"),
		Arranger:  lipgloss.Color("#a29bfe"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"),
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Warning:   lipgloss.Color("#ffc048"),
		Song:      lipgloss.Color("#feca57"),
		Tag:       lipgloss.Color("#5fd068"),
		Lyricist:  lipgloss.Color("#ff6b6b"),
		Composer:  lipgloss.Color("#ff9ff3"),
		Arranger:  lipgloss.Color("#48dbfb"),
	}

	Themes = []Theme{
		ThemeNight,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

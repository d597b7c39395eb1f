package lifecycle

import "github.com/san-kum/lyricfield/internal/content"

// Styler resolves a bubble color from its content type and roles. It never
// sees the bubble itself.
type Styler interface {
	Resolve(t content.Type, roles []content.RoleCount) string
}

type StylerFunc func(t content.Type, roles []content.RoleCount) string

func (f StylerFunc) Resolve(t content.Type, roles []content.RoleCount) string { return f(t, roles) }

// DefaultStyler colors by type, and people by their dominant role.
var DefaultStyler Styler = StylerFunc(func(t content.Type, roles []content.RoleCount) string {
	switch t {
	case content.TypeSong:
		return "#7aa2f7"
	case content.TypeTag:
		return "#9ece6a"
	case content.TypePerson:
		best := content.RoleCount{}
		for _, r := range roles {
			if r.Songs > best.Songs {
				best = r
			}
		}
		switch best.Role {
		case content.RoleComposer:
			return "#e0af68"
		case content.RoleArranger:
			return "#bb9af7"
		}
		return "#f7768e"
	}
	return "#c0caf5"
})

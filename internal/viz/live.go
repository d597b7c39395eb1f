package viz

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/engine"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300

	SnapshotFile  = "lyricfield.svg"
	RecordingFile = "lyricfield.gif"
)

// tunable lists the parameters exposed in the side panel.
var tunable = []string{
	"maxBubbles", "maxDisplayedItems", "buoyancyStrength", "windStrength",
	"noiseIntensity", "airResistance", "breathingAmplitude", "rotationCooldown",
	"recencyWeight", "popularityWeight", "typeBalanceWeight", "randomWeight",
	"minDistance",
}

type TickMsg time.Time

// Model drives an engine from the Bubble Tea event loop. The engine must not
// be started separately: every TickMsg advances it by one frame.
type Model struct {
	engine  *engine.Engine
	catalog content.Catalog
	theme   Theme
	fps     int
	canvas  *Canvas
	frame   engine.Frame
	running bool

	selected int
	focus    int
	detail   string
	status   string

	displayed []float64
	progress  []float64

	recording bool
	frames    []*image.Paletted
	showHelp  bool
}

// NewModel wires the theme into the engine as its styler. cat is reloaded
// on reset.
func NewModel(e *engine.Engine, cat content.Catalog, th Theme, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	e.QueueStyler(th)
	return Model{
		engine:    e,
		catalog:   cat,
		theme:     th,
		fps:       fps,
		canvas:    NewCanvas(width, height),
		frame:     e.Last(),
		running:   true,
		displayed: make([]float64, 0, historyCapacity),
		progress:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the engine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.toggleRecording()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "t":
			m.theme = NextTheme(m.theme)
			m.engine.QueueStyler(m.theme)
			m.status = "theme: " + m.theme.Name
		case "tab":
			m.selected = (m.selected + 1) % len(tunable)
		case "up", "k":
			m.tune(true)
		case "down", "j":
			m.tune(false)
		case "n":
			m.cycleFocus(1)
		case "p":
			m.cycleFocus(-1)
		case "enter":
			m.clickFocused()
		case "s":
			m.snapshot()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, captureFrame(m.canvas))
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the engine by one frame.
func (m *Model) step() {
	m.frame = m.engine.Tick(1 / float64(m.fps))
	m.displayed = appendCapped(m.displayed, float64(m.frame.Stats.Displayed))
	m.progress = appendCapped(m.progress, m.frame.Stats.CycleProgress)
	if m.focus >= len(m.frame.Bubbles) {
		m.focus = 0
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) reset() {
	m.engine.Initialize(m.catalog)
	m.frame = engine.Frame{}
	m.displayed = m.displayed[:0]
	m.progress = m.progress[:0]
	m.focus = 0
	m.detail = ""
	m.status = "reset"
}

// tune nudges the selected parameter. Whole-valued options move by one,
// fractional ones by 5%.
func (m *Model) tune(up bool) {
	key := tunable[m.selected]
	val, err := m.engine.Params().Get(key)
	if err != nil {
		m.status = err.Error()
		return
	}
	next := val * 0.95
	switch {
	case val >= 1 && val == math.Trunc(val) && up:
		next = val + 1
	case val >= 1 && val == math.Trunc(val):
		next = val - 1
	case up:
		next = val * 1.05
	}
	if err := m.engine.UpdateParams(map[string]float64{key: next}); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) cycleFocus(dir int) {
	n := len(m.frame.Bubbles)
	if n == 0 {
		return
	}
	m.focus = ((m.focus+dir)%n + n) % n
}

func (m *Model) focused() (dynamo.BubbleView, bool) {
	if m.focus < 0 || m.focus >= len(m.frame.Bubbles) {
		return dynamo.BubbleView{}, false
	}
	return m.frame.Bubbles[m.focus], true
}

func (m *Model) clickFocused() {
	b, ok := m.focused()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	it, err := m.engine.Click(ctx, b.ID)
	if err != nil {
		m.detail = err.Error()
		return
	}
	m.detail = Describe(it)
}

// Describe formats a clicked item for the side panel.
func Describe(it content.Item) string {
	return content.Match(it,
		func(s content.Song) string {
			credits := append(append(append([]string(nil), s.Lyricists...), s.Composers...), s.Arrangers...)
			return fmt.Sprintf("♪ %s\n  by %s\n  tags: %s", s.Title, joinOr(credits), joinOr(s.Tags))
		},
		func(p content.Person) string {
			roles := make([]string, 0, len(p.Roles))
			for _, r := range p.Roles {
				roles = append(roles, fmt.Sprintf("%s ×%d", r.Role, r.Songs))
			}
			return fmt.Sprintf("☺ %s\n  %d songs\n  %s", it.Name, it.RelatedCount, joinOr(roles))
		},
		func(content.Tag) string {
			return fmt.Sprintf("# %s\n  %d songs", it.Name, it.RelatedCount)
		},
	)
}

func joinOr(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

func (m *Model) snapshot() {
	p := m.engine.Params()
	svg := FrameSVG(m.frame, p.CanvasWidth, p.CanvasHeight, m.theme)
	if err := os.WriteFile(SnapshotFile, []byte(svg), 0644); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved " + SnapshotFile
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		m.status = "recording"
		return
	}
	m.recording = false
	if err := saveGIF(RecordingFile, m.frames); err != nil {
		m.status = err.Error()
	} else {
		m.status = fmt.Sprintf("saved %s (%d frames)", RecordingFile, len(m.frames))
	}
	m.frames = nil
}

// project maps world coordinates onto canvas dots with a uniform scale.
func project(c *Canvas, p dynamo.Params, x, y float64) (int, int, float64) {
	cw, ch := float64(c.SubWidth()), float64(c.SubHeight())
	if p.CanvasWidth <= 0 || p.CanvasHeight <= 0 {
		return 0, 0, 0
	}
	s := math.Min(cw/p.CanvasWidth, ch/p.CanvasHeight)
	ox := (cw - p.CanvasWidth*s) / 2
	oy := (ch - p.CanvasHeight*s) / 2
	return int(ox + x*s), int(oy + y*s), s
}

func (m *Model) draw() {
	m.canvas.Clear()
	p := m.engine.Params()
	for i, b := range m.frame.Bubbles {
		cx, cy, s := project(m.canvas, p, b.X, b.Y)
		r := int(math.Round(b.Radius * s))
		color := b.Color
		if b.Opacity < 0.35 {
			color = string(m.theme.Muted)
		}
		m.canvas.DrawCircle(cx, cy, r, color)
		if i == m.focus {
			m.canvas.DrawCircle(cx, cy, r+2, string(m.theme.Accent))
		}
	}
}

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// View renders the TUI interface.
func (m Model) View() string {
	th := m.theme
	header := lipgloss.NewStyle().Foreground(th.Primary).Bold(true)
	active := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)

	var s strings.Builder
	s.WriteString(header.Render("LYRICFIELD") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.recording {
		status += " ● REC"
	}
	s.WriteString(status + "\n")

	if len(m.displayed) > 1 {
		chart := asciigraph.Plot(m.displayed, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Displayed"))
		s.WriteString(graphStyle.Foreground(th.Secondary).Render(chart) + "\n")
	}

	st := m.frame.Stats
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.1fs", m.frame.Time))
	row("Bubbles", fmt.Sprintf("%d", len(m.frame.Bubbles)))
	row("Types", fmt.Sprintf("%s %d/%d/%d", TypeShare(st.DisplayedByType.Song, st.DisplayedByType.Person, st.DisplayedByType.Tag, 12, th),
		st.DisplayedByType.Song, st.DisplayedByType.Person, st.DisplayedByType.Tag))
	row("Cycle", fmt.Sprintf("#%d %s %d/%d", st.CurrentCycle, ProgressBar(st.CycleProgress, 12), st.ItemsInCurrentCycle, st.TotalContent))
	row("Progress", Sparkline(m.progress, 24))
	row("Rotations", fmt.Sprintf("%d forced, %d done", st.ForcedRotations, st.CompletedCycles))
	row("Overlaps", fmt.Sprintf("%d unresolved", m.frame.Collision.Unresolved))

	s.WriteString("\nPARAMETERS\n")
	p := m.engine.Params()
	for i, k := range tunable {
		v, _ := p.Get(k)
		line := fmt.Sprintf("%-18s %8.3f", k, v)
		if i == m.selected {
			s.WriteString(active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Width(0).Render(line) + "\n")
		}
	}

	if b, ok := m.focused(); ok {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render("◉ "+b.Name) +
			fmt.Sprintf("  %s %.0f%%", b.Phase, 100*b.Age/math.Max(b.Lifespan, 1e-9)) + "\n")
	}
	if m.detail != "" {
		s.WriteString(m.detail + "\n")
	}
	if m.status != "" {
		s.WriteString(lipgloss.NewStyle().Foreground(th.Warning).Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit T:Theme\nN/P:Focus ⏎:Click S:SVG G:GIF ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.Render()), statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reload catalog           ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  N/P      - Focus next/prev bubble   ║
║  Enter    - Click focused bubble     ║
║  S        - Save SVG snapshot        ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeLines   = 6
)

type PlayerOptions struct {
	Title string
	Theme string
	FPS   int
	// Series is plotted under the canvas with the current step marked.
	Series        []float64
	SeriesCaption string
}

// tickMsg carries the play generation it was scheduled for so ticks from an
// earlier play do not advance a later one.
type tickMsg struct {
	gen int
}

// Player steps through precomputed scenes on a braille canvas.
type Player struct {
	scenes        []scene.Scene
	bounds        geom.Rect
	opts          PlayerOptions
	step          int
	playing       bool
	gen           int
	theme         int
	width, height int
	showHelp      bool
}

func NewPlayer(scenes []scene.Scene, bounds geom.Rect, opts PlayerOptions) Player {
	if opts.FPS < 1 {
		opts.FPS = 1
	}
	return Player{
		scenes: scenes,
		bounds: bounds,
		opts:   opts,
		theme:  themeIndex(opts.Theme),
		width:  defaultWidth,
		height: defaultHeight,
	}
}

func (m Player) Step() int     { return m.step }
func (m Player) Playing() bool { return m.playing }
func (m Player) Theme() Theme  { return Themes[m.theme] }
func (m Player) NumSteps() int { return len(m.scenes) }
func (m Player) Init() tea.Cmd { return nil }

func (m Player) lastStep() int { return len(m.scenes) - 1 }

func (m Player) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			return m.toggle()
		case "right", "l":
			m.pause()
			m.seek(m.step + 1)
		case "left", "h":
			m.pause()
			m.seek(m.step - 1)
		case "home", "g":
			m.pause()
			m.seek(0)
		case "end", "G":
			m.pause()
			m.seek(m.lastStep())
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		if !m.playing || msg.gen != m.gen {
			return m, nil
		}
		if m.step >= m.lastStep() {
			m.pause()
			return m, nil
		}
		m.step++
		return m, m.tick()
	}
	return m, nil
}

// toggle starts playing from the current step, rewinding first when the
// last step is showing.
func (m Player) toggle() (tea.Model, tea.Cmd) {
	if m.playing {
		m.pause()
		return m, nil
	}
	if len(m.scenes) < 2 {
		return m, nil
	}
	if m.step >= m.lastStep() {
		m.step = 0
	}
	m.playing = true
	m.gen++
	return m, m.tick()
}

func (m *Player) pause() { m.playing = false }

func (m *Player) seek(t int) {
	if last := m.lastStep(); t > last {
		t = last
	}
	if t < 0 {
		t = 0
	}
	m.step = t
}

// Status is the slider label for the current step.
func (m Player) Status() string {
	return fmt.Sprintf("t = %d / %d", m.step, len(m.scenes))
}

func (m Player) canvasSize() (w, h int) {
	w, h = m.width-4, m.height-chromeLines
	if len(m.opts.Series) > 1 {
		h -= 6
	}
	if w < 10 {
		w = 10
	}
	if h < 4 {
		h = 4
	}
	return w, h
}

func (m Player) View() string {
	th := m.Theme()
	if len(m.scenes) == 0 {
		return th.label().Render("no frames") + "\n"
	}

	cw, ch := m.canvasSize()
	canvas := NewCanvas(cw, ch)
	canvas.DrawScene(m.scenes[m.step], m.bounds, th.Mono)

	var s strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "navtrace"
	}
	state := "PAUSED"
	if m.playing {
		state = "PLAYING"
	}
	s.WriteString(th.title().Render(strings.ToUpper(title)) + "  " + th.status().Render(state) + "  " + th.value().Render(m.Status()) + "\n")
	s.WriteString(th.panel().Render(strings.TrimSuffix(canvas.Render(), "\n")) + "\n")

	if len(m.opts.Series) > 1 {
		caption := m.opts.SeriesCaption
		if caption == "" {
			caption = "series"
		}
		caption = fmt.Sprintf("%s (t=%d: %g)", caption, m.step, m.opts.Series[min(m.step, len(m.opts.Series)-1)])
		chart := asciigraph.Plot(m.opts.Series, asciigraph.Height(4), asciigraph.Width(cw-8), asciigraph.Caption(caption))
		s.WriteString(th.label().Render(chart) + "\n")
	}

	s.WriteString(th.hint().Render("space:play/pause  ←/→:step  home/end:jump  t:theme (" + th.Name + ")  ?:help  q:quit"))
	if m.showHelp {
		s.WriteString("\n" + lipgloss.JoinVertical(lipgloss.Left,
			th.label().Render("Space     play from the current step, or pause"),
			th.label().Render("←/h →/l   previous / next step"),
			th.label().Render("Home/g    first step"),
			th.label().Render("End/G     last step"),
			th.label().Render("T         cycle themes"),
		))
	}
	return s.String()
}

package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/san-kum/flipsim/internal/fluid"
	"github.com/san-kum/flipsim/internal/metrics"
)

const (
	canvasWidth     = 40
	canvasHeight    = 20
	historyCapacity = 600
	flipStep        = 0.05
)

type TickMsg time.Time

// Model steps a fluid simulator once per tick and renders a dashboard.
type Model struct {
	sys           *fluid.Simulator
	params        fluid.Params
	initialParams fluid.Params
	dt            float32
	interval      time.Duration
	title         string

	frame   int
	t       float64
	stats   dynamo.FrameStats
	err     error
	running bool

	energyHistory   []float64
	residualHistory []float64

	canvas   *Canvas
	theme    Theme
	styles   styles
	showHelp bool
}

// NewModel builds a dashboard stepping sys by dt every 1/fps seconds.
func NewModel(sys *fluid.Simulator, params fluid.Params, dt float64, fps int, title string) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		sys:             sys,
		params:          params,
		initialParams:   params,
		dt:              float32(dt),
		interval:        time.Second / time.Duration(fps),
		title:           title,
		running:         true,
		energyHistory:   make([]float64, 0, historyCapacity),
		residualHistory: make([]float64, 0, historyCapacity),
		canvas:          NewCanvas(canvasWidth, canvasHeight),
		theme:           ThemeOcean,
		styles:          newStyles(ThemeOcean),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "f":
			m.params.FlipRatio = clampRatio(m.params.FlipRatio - flipStep)
		case "F":
			m.params.FlipRatio = clampRatio(m.params.FlipRatio + flipStep)
		case "d":
			m.params.CompensateDrift = !m.params.CompensateDrift
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func clampRatio(r float32) float32 {
	return max(0, min(1, r))
}

func (m *Model) step() {
	if err := m.sys.Step(m.dt, m.params); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.frame++
	m.t += float64(m.dt)
	m.stats = metrics.Collect(m.sys, m.frame, m.t)

	m.energyHistory = appendCapped(m.energyHistory, m.stats.KineticEnergy)
	m.residualHistory = appendCapped(m.residualHistory, m.stats.Residual)
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset rebuilds the scene and restores the initial parameters.
func (m *Model) reset() {
	if err := m.sys.Reset(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.params = m.initialParams
	m.frame = 0
	m.t = 0
	m.stats = dynamo.FrameStats{}
	m.err = nil
	m.running = true
	m.energyHistory = m.energyHistory[:0]
	m.residualHistory = m.residualHistory[:0]
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("FAILED: " + m.err.Error())
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	default:
		return m.styles.running.Render("RUNNING")
	}
}

func (m Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

// View renders the TUI interface.
func (m Model) View() string {
	SideView(m.sys.Grid(), m.canvas)
	canvasView := m.styles.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}
	s.WriteString(m.styles.label.Render("Residual") + m.styles.sparkline(m.residualHistory, 30) + "\n\n")

	s.WriteString(m.row("Frame", fmt.Sprintf("%d", m.frame)))
	s.WriteString(m.row("Time", fmt.Sprintf("%.2fs", m.t)))
	s.WriteString(m.row("Particles", fmt.Sprintf("%d", m.sys.NumParticles())))
	s.WriteString(m.row("Resolution", fmt.Sprintf("%d", m.sys.Resolution())))
	s.WriteString(m.row("Fluid cells", fmt.Sprintf("%d", m.stats.FluidCells)))
	s.WriteString(m.row("Max speed", fmt.Sprintf("%.3f", m.stats.MaxSpeed)))
	s.WriteString(m.row("Mean height", fmt.Sprintf("%.3f", m.stats.MeanHeight)))
	s.WriteString(m.row("Density", fmt.Sprintf("%.2f ± %.2f", m.stats.MeanDensity, m.stats.DensityStd)))

	s.WriteString("\nSOLVER\n")
	s.WriteString(m.styles.active.Render(fmt.Sprintf("%-14s%s %.2f", "FLIP ratio", ratioBar(float64(m.params.FlipRatio), 10), m.params.FlipRatio)) + "\n")
	drift := "off"
	if m.params.CompensateDrift {
		drift = "on"
	}
	s.WriteString(m.row("Drift comp.", drift))
	s.WriteString(m.row("Pressure it.", fmt.Sprintf("%d", m.params.PressureIterations)))
	s.WriteString(m.row("Sub-steps", fmt.Sprintf("%d", m.params.SubSteps)))
	s.WriteString(m.styles.help.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nf/F:FLIP  D:Drift  ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset the scene          ║
║  f / F    - FLIP ratio -/+ 0.05      ║
║  D        - Toggle drift correction  ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

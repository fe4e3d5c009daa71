// Package tui is the live terminal view of a running integration.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/crystalsim/internal/sim"
)

const (
	frameInterval   = time.Second / 30
	chartPoints     = 60
	defaultPerFrame = 2000
	maxPerFrame     = 1 << 20
)

// TickMsg drives one frame. Ticks from a chain started before the last
// restart carry an older Gen and are dropped.
type TickMsg struct {
	At  time.Time
	Gen int
}

// StartFunc begins a fresh run; it is called again on reset.
type StartFunc func() (*sim.Stepper, error)

// Model advances a sim.Stepper a chunk of steps per frame and renders the
// stress-strain curve so far.
type Model struct {
	title    string
	start    StartFunc
	stepper  *sim.Stepper
	perFrame int
	running  bool
	gen      int
	err      error
	began    time.Time
	elapsed  time.Duration
}

func NewModel(title string, start StartFunc, perFrame int) (Model, error) {
	st, err := start()
	if err != nil {
		return Model{}, err
	}
	if perFrame <= 0 {
		perFrame = defaultPerFrame
	}
	return Model{
		title:    title,
		start:    start,
		stepper:  st,
		perFrame: perFrame,
		running:  true,
		began:    time.Now(),
	}, nil
}

func tick(gen int) tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg{At: t, Gen: gen} })
}

func (m Model) Init() tea.Cmd {
	return tick(m.gen)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			st, err := m.start()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.stepper, m.err = st, nil
			m.running = true
			m.began, m.elapsed = time.Now(), 0
			m.gen++
			return m, tick(m.gen)
		case "+", "=":
			if m.perFrame < maxPerFrame {
				m.perFrame *= 2
			}
		case "-", "_":
			if m.perFrame > 1 {
				m.perFrame /= 2
			}
		}
	case TickMsg:
		if msg.Gen != m.gen || m.stepper.Done() {
			return m, nil
		}
		if m.running {
			if _, err := m.stepper.Advance(m.perFrame); err != nil {
				m.err = err
			}
			m.elapsed = time.Since(m.began)
		}
		return m, tick(m.gen)
	}
	return m, nil
}

// Result returns what has been integrated so far.
func (m Model) Result() *sim.Result {
	return m.stepper.Result()
}

func (m Model) Err() error { return m.err }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusFailed.Render("FAILED")
	case m.stepper.Done():
		return statusRunning.Render(fmt.Sprintf("DONE in %s", m.elapsed.Round(time.Millisecond)))
	case !m.running:
		return statusPaused.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	x := m.stepper.State()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(ProgressBar(m.stepper.Progress(), 40) +
		fmt.Sprintf(" %d/%d\n\n", m.stepper.Step(), m.stepper.Total()))

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Strain", fmt.Sprintf("%.6f", x.Strain))
	row("Stress", fmt.Sprintf("%.4f MPa", x.Stress))
	row("Resolved", fmt.Sprintf("%.4f MPa", x.Resolved))
	row("Threshold", fmt.Sprintf("%.4f MPa", x.Threshold))
	row("Density", fmt.Sprintf("%.4g", x.TotalDensity()))
	row("Shear rate", fmt.Sprintf("%.4g", x.ShearRate))
	row("Branch", x.Branch.String())
	row("Steps/frame", fmt.Sprint(m.perFrame))

	if m.err != nil {
		s.WriteString("\n" + statusFailed.Render(m.err.Error()) + "\n")
	}

	stats := panelStyle.Render(s.String())

	chart := ""
	if stresses := sampleStresses(m.stepper.Result().Trajectory, chartPoints); len(stresses) > 1 {
		chart = graphStyle.Render(asciigraph.Plot(stresses,
			asciigraph.Height(12),
			asciigraph.Width(chartPoints),
			asciigraph.Caption("Stress-Strain Curve")))
	}

	help := helpStyle.Render("SP:Pause R:Restart +/-:Speed Q:Quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, stats, chart),
		help)
}

// sampleStresses picks the stress of n evenly spaced points, always including
// the last.
func sampleStresses(traj sim.Trajectory, n int) []float64 {
	if len(traj) <= n {
		n = len(traj)
	}
	out := make([]float64, n)
	for i := range out {
		j := len(traj) - 1
		if n > 1 {
			j = i * (len(traj) - 1) / (n - 1)
		}
		out[i] = traj[j].Stress
	}
	return out
}

package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/blochsim/internal/bloch"
)

const (
	frameRate   = time.Second / 30
	canvasCells = 20
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Playback replays a trajectory step by step. The transverse plane and the
// x-z plane of the Bloch sphere are drawn side by side.
type Playback struct {
	title  string
	traj   *bloch.Trajectory
	times  []float64
	steps  int
	spins  int
	spin   int
	step   int
	stride int
	paused bool
}

func NewPlayback(title string, traj *bloch.Trajectory, times []float64, spin int) Playback {
	steps, spins := traj.Dims()
	stride := max(1, steps/300)
	if spin < 0 || spin >= spins {
		spin = 0
	}
	return Playback{
		title:  title,
		traj:   traj,
		times:  times,
		steps:  steps,
		spins:  spins,
		spin:   spin,
		stride: stride,
	}
}

func (m Playback) Step() int    { return m.step }
func (m Playback) Spin() int    { return m.spin }
func (m Playback) Paused() bool { return m.paused }

func (m Playback) Init() tea.Cmd { return tick() }

func (m Playback) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if !m.paused && m.step >= m.steps-1 {
				m.step = 0
			}
		case "left", "h":
			m.paused = true
			m.step = max(0, m.step-1)
		case "right", "l":
			m.paused = true
			m.step = min(m.steps-1, m.step+1)
		case "+", "=":
			m.stride *= 2
		case "-":
			m.stride = max(1, m.stride/2)
		case "tab":
			m.spin = (m.spin + 1) % m.spins
		case "home":
			m.step = 0
		}
		return m, nil
	case TickMsg:
		if !m.paused {
			m.step += m.stride
			if m.step >= m.steps-1 {
				m.step = m.steps - 1
				m.paused = true
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Playback) View() string {
	v := m.traj.At(m.step, m.spin)

	transverse := NewCanvas(canvasCells, canvasCells/2)
	transverse.Circle()
	transverse.Line(0, 0, v.X, v.Y)

	side := NewCanvas(canvasCells, canvasCells/2)
	side.Circle()
	side.Line(0, 0, v.X, v.Z)

	views := lipgloss.JoinHorizontal(lipgloss.Top,
		Panel.Render(Subtle.Render("Mx / My")+"\n"+transverse.String()),
		Panel.Render(Subtle.Render("Mx / Mz")+"\n"+side.String()),
	)

	status := StatusRunning.Render("▶ playing")
	if m.paused {
		status = StatusPaused.Render("⏸ paused")
	}

	t := float64(m.step)
	if m.step < len(m.times) {
		t = m.times[m.step]
	}

	var b strings.Builder
	b.WriteString(Title.Render(m.title) + "  " + status + "\n\n")
	b.WriteString(views + "\n")
	fmt.Fprintf(&b, "%s%d / %d\n", MetricLabel.Render("step"), m.step, m.steps-1)
	fmt.Fprintf(&b, "%s%.4f ms\n", MetricLabel.Render("time"), t)
	fmt.Fprintf(&b, "%s%d / %d\n", MetricLabel.Render("spin"), m.spin, m.spins)
	fmt.Fprintf(&b, "%s%s\n", MetricLabel.Render("M"), MetricValue.Render(fmt.Sprintf("(%+.4f, %+.4f, %+.4f)", v.X, v.Y, v.Z)))
	fmt.Fprintf(&b, "%s%.6f\n", MetricLabel.Render("|M|"), math.Sqrt(v.X*v.X+v.Y*v.Y+v.Z*v.Z))
	fmt.Fprintf(&b, "%s  x%d\n\n", ProgressBar(float64(m.step)/float64(max(1, m.steps-1)), 40), m.stride)
	b.WriteString(KeyHint.Render("space pause · ←/→ step · +/- speed · tab spin · home rewind · q quit"))
	return b.String()
}

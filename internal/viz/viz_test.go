package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/sequence"
)

func precession(t *testing.T, steps, spins int) *bloch.Trajectory {
	t.Helper()
	s := sequence.Spins{Count: spins, Offset: 1, OffsetSpan: 0.5, T1: math.Inf(1), T2: math.Inf(1)}
	bx, by, bz := sequence.Fields(make(sequence.Waveform, steps), s)
	t1, t2 := sequence.Relaxation(s)
	traj, err := bloch.Integrate(sequence.Initial(spins, 1, 0, 0), bx, by, bz, t1, t2, sequence.Uniform(steps, 0.05))
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	return traj
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Playback, msg tea.Msg) (Playback, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Playback), cmd
}

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Line(-1, 0, 1, 0)

	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	lit := 0
	for _, r := range c.String() {
		if r > brailleBlank && r <= brailleBlank+0xff {
			lit++
		}
	}
	if lit != 4 {
		t.Errorf("expected a line across all 4 cells, got %d lit cells", lit)
	}

	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				t.Fatal("expected blank canvas after clear")
			}
		}
	}
}

func TestCanvasOutOfBounds(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(-1, 0)
	c.Set(100, 100)
	c.Point(5, 5)
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r > brailleBlank }) {
		t.Error("expected out of range dots to be ignored")
	}
}

func TestCanvasLineClampsEndpoints(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Line(0, 0, 1e300, -1e300)
	x, y := c.dot(1, -1)
	if c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) == 0 {
		t.Error("expected the line to end on the bottom right corner")
	}

	blank := NewCanvas(4, 2)
	blank.Line(0, 0, math.NaN(), 0.5)
	blank.Point(math.NaN(), 0)
	if strings.ContainsFunc(blank.String(), func(r rune) bool { return r > brailleBlank }) {
		t.Error("expected NaN coordinates to draw nothing")
	}
}

// diverging returns one spin whose transverse magnetization flips sign and
// doubles every step: dt is three times T2 with no field applied.
func diverging(t *testing.T, steps int) *bloch.Trajectory {
	t.Helper()
	s := sequence.Spins{Count: 1, T1: 1000, T2: 1}
	bx, by, bz := sequence.Fields(make(sequence.Waveform, steps), s)
	t1, t2 := sequence.Relaxation(s)
	traj, err := bloch.Integrate(sequence.Initial(1, 1, 0, 0), bx, by, bz, t1, t2, sequence.Uniform(steps, 3))
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if mx := math.Abs(traj.Mx.At(steps-1, 0)); mx < 1e30 {
		t.Fatalf("expected |Mx| to blow up, got %g", mx)
	}
	return traj
}

func TestRenderDivergingTrajectory(t *testing.T) {
	traj := diverging(t, 120)

	c := TransversePath(traj, 0, 40)
	if !strings.ContainsFunc(c.String(), func(r rune) bool { return r > brailleBlank }) {
		t.Error("expected a drawn path")
	}

	m := NewPlayback("diverging", traj, nil, 0)
	for m.Step() < 119 {
		m, _ = send(m, TickMsg{})
	}
	if !strings.Contains(m.View(), "Mx / My") {
		t.Error("expected playback view to render")
	}
}

func TestPlotSpin(t *testing.T) {
	traj := precession(t, 40, 2)

	out, err := PlotSpin(traj, 1, 60, 8)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Mx", "My", "Mz", "spin 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in plot", want)
		}
	}

	if _, err := PlotSpin(traj, 2, 60, 8); err == nil {
		t.Error("expected error for missing spin")
	}
}

func TestPlotSpectrum(t *testing.T) {
	if PlotSpectrum(nil, nil, 40, 5) != "" {
		t.Error("expected empty plot for empty spectrum")
	}
	out := PlotSpectrum([]float64{-1, 0, 1}, []float64{0, 1, 0}, 40, 5)
	if !strings.Contains(out, "kHz") {
		t.Error("expected frequency range caption")
	}
}

func TestSummary(t *testing.T) {
	out := Summary("run hard_1234abcd",
		[]Field{{"sequence", "hard"}},
		map[string]float64{"b_metric": 2, "a_metric": 1},
		[]string{"imaginary part dropped"},
	)

	if !strings.Contains(out, "hard_1234abcd") || !strings.Contains(out, "imaginary part dropped") {
		t.Error("expected title and warning in summary")
	}
	if strings.Index(out, "a_metric") > strings.Index(out, "b_metric") {
		t.Error("expected metrics sorted by name")
	}
}

func TestPlaybackKeys(t *testing.T) {
	m := NewPlayback("test", precession(t, 20, 3), nil, 0)

	m, _ = send(m, key(" "))
	if !m.Paused() {
		t.Fatal("expected space to pause")
	}

	m, _ = send(m, key("right"))
	m, _ = send(m, key("right"))
	m, _ = send(m, key("left"))
	if m.Step() != 1 {
		t.Errorf("expected step 1, got %d", m.Step())
	}

	m, _ = send(m, key("left"))
	m, _ = send(m, key("left"))
	if m.Step() != 0 {
		t.Errorf("expected step clamped at 0, got %d", m.Step())
	}

	for i := 0; i < 3; i++ {
		m, _ = send(m, key("tab"))
	}
	if m.Spin() != 0 {
		t.Errorf("expected spin to wrap to 0, got %d", m.Spin())
	}

	_, cmd := send(m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPlaybackTickStopsAtEnd(t *testing.T) {
	m := NewPlayback("test", precession(t, 5, 1), nil, 0)

	for i := 0; i < 10; i++ {
		m, _ = send(m, TickMsg{})
	}
	if m.Step() != 4 || !m.Paused() {
		t.Errorf("expected paused at last step, got step %d paused %v", m.Step(), m.Paused())
	}

	m, _ = send(m, key(" "))
	if m.Step() != 0 || m.Paused() {
		t.Error("expected resume at the end to restart")
	}

	view := m.View()
	if !strings.Contains(view, "step") || !strings.Contains(view, "Mx / My") {
		t.Error("expected step and plane labels in view")
	}
}

func TestCanvasSVG(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := c.SVG(10)
	if !strings.HasPrefix(svg, "<?xml") || !strings.Contains(svg, `width="40" height="40"`) {
		t.Errorf("unexpected svg header: %s", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="5.0" cy="5.0"`) || !strings.Contains(svg, `cx="35.0" cy="35.0"`) {
		t.Error("expected dots at the corners")
	}
}

func TestTransversePath(t *testing.T) {
	traj := precession(t, 30, 1)

	c := TransversePath(traj, 0, 20)
	if c.Width != 20 || c.Height != 10 {
		t.Fatalf("expected 20x10 canvas, got %dx%d", c.Width, c.Height)
	}
	if !strings.ContainsFunc(c.String(), func(r rune) bool { return r > brailleBlank }) {
		t.Error("expected a drawn path")
	}
}

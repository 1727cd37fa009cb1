package viz

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lagsim/internal/sim"
)

const (
	width       = 80
	height      = 24
	fps         = 60
	trailLength = 120
	energyWidth = 300
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Player replays a finished trajectory over a fixed number of evenly
// spaced frames. It never integrates.
type Player struct {
	tr      *sim.Trajectory
	frames  []int
	pos     int
	running bool
	loop    bool

	canvas *Canvas
	scene  *Scene

	zoom, zoomVel, zoomTarget float64
	spring                    harmonica.Spring

	recording bool
	gifFrames []*image.Paletted
	gifPath   string
	status    string
	showHelp  bool
}

// NewPlayer prepares n frames of tr. n <= 0 plays every record.
func NewPlayer(tr *sim.Trajectory, n int) Player {
	if n <= 0 {
		n = tr.Len()
	}
	return Player{
		tr:         tr,
		frames:     tr.Frames(n),
		running:    true,
		loop:       true,
		canvas:     NewCanvas(width, height),
		scene:      NewScene(tr.MaxRadius(), trailLength),
		zoom:       1,
		zoomTarget: 1,
		spring:     harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		gifPath:    "trajectory.gif",
	}
}

func (p Player) Init() tea.Cmd { return tick() }

// Record is the trajectory index currently on screen.
func (p Player) Record() int {
	if len(p.frames) == 0 {
		return 0
	}
	return p.frames[p.pos]
}

func (p Player) Running() bool { return p.running }

func (p Player) Zoom() float64 { return p.zoom }

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case " ":
			p.running = !p.running
		case "r":
			p.pos = 0
			p.scene.ResetTrail()
		case "[", "left":
			p.scrub(-1)
		case "]", "right":
			p.scrub(1)
		case "{":
			p.scrub(-10)
		case "}":
			p.scrub(10)
		case "+", "=":
			p.zoomTarget = min(p.zoomTarget*1.25, 8)
		case "-", "_":
			p.zoomTarget = max(p.zoomTarget/1.25, 0.25)
		case "0":
			p.zoomTarget = 1
		case "l":
			p.loop = !p.loop
		case "g":
			p.toggleRecording()
		case "t":
			p.status = "theme: " + NextTheme().Name
		case "?":
			p.showHelp = !p.showHelp
		}
	case TickMsg:
		p.zoom, p.zoomVel = p.spring.Update(p.zoom, p.zoomVel, p.zoomTarget)
		if p.running {
			p.advance()
		}
		if p.recording {
			p.draw()
			p.gifFrames = append(p.gifFrames, p.canvas.Image(8, 16, gifInk))
		}
		return p, tick()
	}
	return p, nil
}

func (p *Player) advance() {
	if len(p.frames) == 0 {
		return
	}
	if p.pos+1 < len(p.frames) {
		p.pos++
		return
	}
	if p.loop {
		p.pos = 0
		p.scene.ResetTrail()
		return
	}
	p.running = false
}

// scrub pauses playback and moves the playhead by dir frames.
func (p *Player) scrub(dir int) {
	p.running = false
	p.pos = max(0, min(p.pos+dir, len(p.frames)-1))
	p.scene.ResetTrail()
}

func (p *Player) toggleRecording() {
	if !p.recording {
		p.recording = true
		p.gifFrames = p.gifFrames[:0]
		p.status = "recording"
		return
	}
	p.recording = false
	if err := SaveGIF(p.gifPath, p.gifFrames, 100/fps+1); err != nil {
		p.status = "gif: " + err.Error()
	} else {
		p.status = fmt.Sprintf("saved %d frames to %s", len(p.gifFrames), p.gifPath)
	}
	p.gifFrames = nil
}

func (p *Player) draw() {
	if p.tr.Len() == 0 {
		p.canvas.Clear()
		return
	}
	vp := p.canvas.Fit(p.scene.Radius, p.zoom)
	p.scene.Draw(p.canvas, vp, p.tr.Positions[p.Record()])
}

func (p Player) View() string {
	p.draw()
	canvasView := canvasStyle.Foreground(CurrentTheme.Scene).Render(p.canvas.String())

	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Title)
	s.WriteString(title.Render(strings.ToUpper(p.tr.Name)) + "\n")

	status := "PLAYING"
	if !p.running {
		status = "PAUSED"
	}
	if !p.tr.Complete {
		status += lipgloss.NewStyle().Foreground(CurrentTheme.Incomplete).Render("  INCOMPLETE")
	}
	s.WriteString(status + "\n\n")

	if p.tr.Len() == 0 {
		s.WriteString("no records\n")
		return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	}

	idx := p.Record()
	if idx > 0 && len(p.tr.Energies) > idx {
		start := max(0, idx+1-energyWidth)
		chart := asciigraph.Plot(p.tr.Energies[start:idx+1], asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Energy).Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", p.tr.Times[idx]))
	row("Frame", fmt.Sprintf("%d/%d", p.pos+1, len(p.frames)))
	if len(p.tr.Energies) > idx {
		row("Energy", fmt.Sprintf("%.4f", p.tr.Energies[idx]))
	}
	bodies := p.tr.Positions[idx]
	if len(bodies) > 0 {
		row("Radius", fmt.Sprintf("%.3f / %.3f", bodies[len(bodies)-1].Radius(), p.scene.Radius))
	}
	row("Zoom", fmt.Sprintf("%.2fx", p.zoom))
	row("r(t)", Sparkline(p.radii(24), 24))

	s.WriteString("\nSTATE\n")
	for i, name := range p.tr.StateNames {
		row(name, fmt.Sprintf("%+.4f", p.tr.States[idx][i]))
	}

	s.WriteString("\n" + ProgressBar(float64(p.pos+1)/float64(len(p.frames)), 30) + "\n")
	if p.status != "" {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(p.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Scrub +/-:Zoom"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if p.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  R        - Restart from first frame ║
║  Q        - Quit                     ║
║  [ ]      - Step one frame           ║
║  { }      - Step ten frames          ║
║  + - 0    - Zoom in, out, reset      ║
║  L        - Toggle looping           ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// radii is the outermost body's distance from the origin over the last n
// frames shown.
func (p Player) radii(n int) []float64 {
	out := make([]float64, 0, n)
	for i := max(0, p.pos+1-n); i <= p.pos && i < len(p.frames); i++ {
		bodies := p.tr.Positions[p.frames[i]]
		if len(bodies) > 0 {
			out = append(out, bodies[len(bodies)-1].Radius())
		}
	}
	return out
}

// Play runs the player full screen until the user quits.
func Play(tr *sim.Trajectory, frames int) error {
	_, err := tea.NewProgram(NewPlayer(tr, frames), tea.WithAltScreen()).Run()
	return err
}

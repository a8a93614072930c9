package display

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/game"
)

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(80, 24)
	term := newTerminal(screen)
	t.Cleanup(term.Close)
	return term, screen
}

func TestKeyCommands(t *testing.T) {
	term, screen := newSimTerminal(t)

	screen.InjectKey(tcell.KeyRune, 'N', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'f', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'o', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	want := []game.Command{
		game.CmdNewSimulation,
		game.CmdReportRates,
		game.CmdToggleMode,
		game.CmdOrbit,
		game.CmdQuit,
	}

	var got []game.Command
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < len(want) && time.Now().Before(deadline) {
		got = append(got, term.Commands()...)
		time.Sleep(time.Millisecond)
	}

	if len(got) != len(want) {
		t.Fatalf("got commands %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCommandsDoesNotBlock(t *testing.T) {
	term, _ := newSimTerminal(t)

	done := make(chan struct{})
	go func() {
		term.Commands()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Commands blocked with no pending input")
	}
}

func TestProjection(t *testing.T) {
	p := NewProjection(80, 23)
	tests := []struct {
		name     string
		x, y     float64
		col, row int
		ok       bool
	}{
		{"origin", 0, 0, 40, 11, true},
		{"right", 0.6, 0, 49, 11, true},
		{"down", 0, -0.6, 40, 16, true},
		{"far right", 3, 0, 86, 11, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, ok := p.Cell(tt.x, tt.y)
			if col != tt.col || row != tt.row || ok != tt.ok {
				t.Errorf("Cell(%v, %v) = (%d, %d, %v), want (%d, %d, %v)",
					tt.x, tt.y, col, row, ok, tt.col, tt.row, tt.ok)
			}
		})
	}
}

func TestRenderSpheres(t *testing.T) {
	term, screen := newSimTerminal(t)

	v := game.View{
		Spheres: []components.Sphere{
			{Pos: components.Position{}, Dir: components.Direction{X: 1}, Hit: true},
			{Pos: components.Position{X: 0.6, Z: 0.1}, Dir: components.Direction{Y: 1}},
		},
		Mode:   game.ModeReference,
		Status: "| 1 Sec | CPU",
		Tick:   42,
	}
	if err := term.Render(v); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		col, row int
		fg       tcell.Color
	}{
		{"flagged sphere", 40, 11, tcell.ColorRed},
		{"clear sphere", 49, 11, tcell.ColorBlue},
	}
	for _, tt := range tests {
		r, _, style, _ := screen.GetContent(tt.col, tt.row)
		fg, _, _ := style.Decompose()
		if r != sphereRune || fg != tt.fg {
			t.Errorf("%s: cell (%d, %d) = %q fg %v, want %q fg %v",
				tt.name, tt.col, tt.row, r, fg, sphereRune, tt.fg)
		}
	}

	var status strings.Builder
	for col := 0; col < 80; col++ {
		r, _, _, _ := screen.GetContent(col, 23)
		status.WriteRune(r)
	}
	line := status.String()
	if !strings.HasPrefix(line, "| 1 Sec | CPU | tick 42") {
		t.Errorf("status line = %q", line)
	}
}

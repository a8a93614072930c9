package display

import (
	"fmt"
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/game"
)

// extent is the half-width of the plotted region in world units. Orbit
// places spheres out to radius 1.5.
const extent = 1.5

const (
	sphereRune   = '●'
	boundaryRune = '·'
)

var (
	styleSphere   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleHit      = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleBoundary = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// Projection maps the XY plane onto a terminal area. Terminal cells are
// about twice as tall as wide, so X is stretched by two.
type Projection struct {
	cx, cy int
	half   float64
	cols   int
	rows   int
}

// NewProjection fits the plotted region into cols by rows cells.
func NewProjection(cols, rows int) Projection {
	half := math.Min(float64(cols)/4, float64(rows)/2)
	return Projection{cx: cols / 2, cy: rows / 2, half: half, cols: cols, rows: rows}
}

// Cell returns the cell for a world position and whether it is visible.
func (p Projection) Cell(x, y float64) (col, row int, ok bool) {
	col = p.cx + int(math.Round(x/extent*p.half*2))
	row = p.cy - int(math.Round(y/extent*p.half))
	ok = col >= 0 && col < p.cols && row >= 0 && row < p.rows
	return col, row, ok
}

// Render draws one frame: the unit boundary, each sphere coloured by its
// collision flag, and a status line on the bottom row.
func (t *Terminal) Render(v game.View) error {
	t.screen.Clear()
	w, h := t.screen.Size()
	if w < 1 || h < 2 {
		t.screen.Show()
		return nil
	}

	proj := NewProjection(w, h-1)
	for i := 0; i < 128; i++ {
		a := float64(i) / 128 * 2 * math.Pi
		if col, row, ok := proj.Cell(math.Cos(a), math.Sin(a)); ok {
			t.screen.SetContent(col, row, boundaryRune, nil, styleBoundary)
		}
	}

	// Viewed from +Z: draw far spheres first.
	order := make([]int, len(v.Spheres))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return v.Spheres[order[a]].Pos.Z < v.Spheres[order[b]].Pos.Z
	})
	for _, i := range order {
		drawSphere(t.screen, proj, v.Spheres[i])
	}

	status := v.Status
	if v.Mode == game.ModeLearned {
		status += fmt.Sprintf(" | frame %s", v.Frame.Status)
	}
	status += fmt.Sprintf(" | tick %d | N new F rates P mode O orbit Q quit", v.Tick)
	drawText(t.screen, 0, h-1, w, status, styleStatus)

	t.screen.Show()
	return nil
}

func drawSphere(s tcell.Screen, proj Projection, sp components.Sphere) {
	col, row, ok := proj.Cell(sp.Pos.X, sp.Pos.Y)
	if !ok {
		return
	}
	style := styleSphere
	if sp.Hit {
		style = styleHit
	}
	s.SetContent(col, row, sphereRune, nil, style)
}

func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= maxWidth {
			return
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < maxWidth; col++ {
		s.SetContent(col, y, ' ', nil, style)
	}
}

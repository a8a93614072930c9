// Package display is a terminal front-end for the interactive driver. It
// draws a top-down projection of the pool and turns key presses into
// game commands.
package display

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/collider/game"
)

// Terminal renders game views on a tcell screen.
type Terminal struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
	cmds   []game.Command
}

// New opens the controlling terminal.
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return newTerminal(screen), nil
}

// newTerminal wraps an initialized screen and starts polling its events.
func newTerminal(screen tcell.Screen) *Terminal {
	t := &Terminal{
		screen: screen,
		events: make(chan tcell.Event, 100),
		quit:   make(chan struct{}),
	}
	screen.HideCursor()

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case t.events <- ev:
			case <-t.quit:
				return
			}
		}
	}()
	return t
}

// Commands drains pending input without blocking.
func (t *Terminal) Commands() []game.Command {
	t.cmds = t.cmds[:0]
	for {
		select {
		case ev := <-t.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if cmd := keyCommand(ev); cmd != game.CmdNone {
					t.cmds = append(t.cmds, cmd)
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		default:
			return t.cmds
		}
	}
}

// keyCommand maps N/F/P/O/Q (either case), Esc and Ctrl-C to commands.
func keyCommand(ev *tcell.EventKey) game.Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.CmdQuit
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'n':
			return game.CmdNewSimulation
		case 'f':
			return game.CmdReportRates
		case 'p':
			return game.CmdToggleMode
		case 'o':
			return game.CmdOrbit
		case 'q':
			return game.CmdQuit
		}
	}
	return game.CmdNone
}

// Close restores the terminal.
func (t *Terminal) Close() {
	close(t.quit)
	t.screen.Fini()
}

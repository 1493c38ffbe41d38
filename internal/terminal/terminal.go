// Package terminal renders the framebuffer into the hosting terminal and
// feeds keyboard events to the interpreter. It implements the chip8.Renderer
// and chip8.Input interfaces on top of termbox.
package terminal

import (
	"errors"
	"os"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/keypad"
	"golang.org/x/term"
)

// Every logical pixel is drawn as two terminal cells to get roughly square
// pixels with common monospace fonts.
const cellsPerPixel = 2

const pixelGlyph = '█'

// ErrNotTerminal is returned when standard output is not an interactive
// terminal. Emulation never starts in that case.
var ErrNotTerminal = errors.New("standard output is not a terminal")

// Compile-time checks that Terminal serves both interpreter contracts.
var (
	_ chip8.Renderer = (*Terminal)(nil)
	_ chip8.Input    = (*Terminal)(nil)
)

// Terminal owns the termbox surface. Events are read by a background
// goroutine into a channel so the interpreter can poll without blocking.
type Terminal struct {
	events chan termbox.Event
	done   chan struct{}

	width, height    int
	originX, originY int
}

// New initializes the termbox surface. It fails before any emulation begins
// if the output device is not an interactive terminal.
func New() (*Terminal, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, ErrNotTerminal
	}

	if err := termbox.Init(); err != nil {
		return nil, err
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	t := &Terminal{
		events: make(chan termbox.Event, 64),
		done:   make(chan struct{}),
	}
	t.width, t.height = termbox.Size()
	t.center()

	go t.readEvents()
	return t, nil
}

// Close stops the event reader and restores the terminal.
func (t *Terminal) Close() {
	termbox.Interrupt()
	<-t.done
	termbox.Close()
}

// readEvents pumps termbox events into the channel until interrupted.
func (t *Terminal) readEvents() {
	defer close(t.done)

	for {
		ev := termbox.PollEvent()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		select {
		case t.events <- ev:
		default:
			// Drop events when the interpreter falls behind, a stuck
			// reader must not block shutdown.
		}
	}
}

// center positions the pixel grid in the middle of the terminal window.
func (t *Terminal) center() {
	t.originX = (t.width - chip8.DisplayWidth*cellsPerPixel) / 2
	t.originY = (t.height - chip8.DisplayHeight) / 2
	if t.originX < 0 {
		t.originX = 0
	}
	if t.originY < 0 {
		t.originY = 0
	}
}

// Clear wipes the whole surface.
func (t *Terminal) Clear() {
	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
}

// SetCell draws one logical pixel at its centered window position.
func (t *Terminal) SetCell(x, y int, on bool) {
	ch := ' '
	if on {
		ch = pixelGlyph
	}
	cx := t.originX + x*cellsPerPixel
	cy := t.originY + y
	for i := range cellsPerPixel {
		termbox.SetCell(cx+i, cy, ch, termbox.ColorDefault, termbox.ColorDefault)
	}
}

// Flush writes all buffered cells to the terminal.
func (t *Terminal) Flush() {
	_ = termbox.Flush()
}

// handleEvent translates a termbox event into a keypad digit. The Esc key
// aborts the whole program, resize events update the grid position.
func (t *Terminal) handleEvent(ev termbox.Event) (byte, bool, error) {
	switch ev.Type {
	case termbox.EventKey:
		if ev.Key == termbox.KeyEsc {
			return 0, false, chip8.ErrAborted
		}
		if digit, ok := keypad.Map(ev.Ch); ok {
			return digit, true, nil
		}

	case termbox.EventResize:
		t.width, t.height = ev.Width, ev.Height
		t.center()

	case termbox.EventError:
		return 0, false, ev.Err
	}
	return 0, false, nil
}

// Poll drains pending events and returns a pressed keypad digit if one is
// buffered. It never blocks, execution is not starved by input handling.
func (t *Terminal) Poll() (byte, bool, error) {
	for {
		select {
		case ev := <-t.events:
			digit, ok, err := t.handleEvent(ev)
			if ok || err != nil {
				return digit, ok, err
			}
		default:
			return 0, false, nil
		}
	}
}

// Await blocks until a keypad digit is pressed. Unmapped keys are ignored,
// Esc aborts.
func (t *Terminal) Await() (byte, error) {
	for ev := range t.events {
		digit, ok, err := t.handleEvent(ev)
		if err != nil {
			return 0, err
		}
		if ok {
			return digit, nil
		}
	}
	return 0, chip8.ErrAborted
}

// AwaitAnyKey blocks until any key is pressed, Esc included.
func (t *Terminal) AwaitAnyKey() error {
	for ev := range t.events {
		_, _, err := t.handleEvent(ev)
		if err != nil {
			return err
		}
		if ev.Type == termbox.EventKey {
			return nil
		}
	}
	return nil
}

// ShowMessage writes a status line into the top left corner of the window.
func (t *Terminal) ShowMessage(message string) {
	for x := range t.width {
		termbox.SetCell(x, 0, ' ', termbox.ColorDefault, termbox.ColorDefault)
	}
	for i, ch := range message {
		termbox.SetCell(i, 0, ch, termbox.ColorDefault, termbox.ColorDefault)
	}
	_ = termbox.Flush()
}

// AwaitFittingWindow blocks until the terminal window is large enough to
// hold the pixel grid, prompting the user to enlarge it and waiting on
// resize events.
func (t *Terminal) AwaitFittingWindow() error {
	for {
		switch {
		case t.width < chip8.DisplayWidth*cellsPerPixel:
			if err := t.windowSizeAlert("width"); err != nil {
				return err
			}
		case t.height < chip8.DisplayHeight:
			if err := t.windowSizeAlert("height"); err != nil {
				return err
			}
		default:
			t.Clear()
			t.Flush()
			return nil
		}
	}
}

// windowSizeAlert prompts for a larger window and waits for the next resize.
func (t *Terminal) windowSizeAlert(dimension string) error {
	t.ShowMessage("Please increase your window " + dimension)

	for ev := range t.events {
		if ev.Type == termbox.EventResize {
			t.width, t.height = ev.Width, ev.Height
			t.center()
			return nil
		}
		if ev.Type == termbox.EventKey && ev.Key == termbox.KeyEsc {
			return chip8.ErrAborted
		}
	}
	return chip8.ErrAborted
}

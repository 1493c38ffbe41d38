package chip8

import "errors"

// ErrAborted is returned by Input implementations when the user requested an
// immediate abort of the whole program, independent of the instruction set.
var ErrAborted = errors.New("aborted by user")

// Input delivers keypad events to the interpreter. Keys are hex digits
// 0x0-0xF, the frontend normalizes physical keys through the keypad layout.
type Input interface {
	// Poll returns a pending key press without blocking. ok is false if no
	// mapped key is pressed.
	Poll() (key byte, ok bool, err error)
	// Await blocks until a mapped key is pressed and returns it.
	Await() (key byte, err error)
}

// nullInput is used when no input frontend is attached, e.g. in tests. No
// key is ever pressed and Await never returns a key.
type nullInput struct{}

func (nullInput) Poll() (byte, bool, error) { return 0, false, nil }

func (nullInput) Await() (byte, error) { return 0, ErrAborted }

// nullRenderer discards all drawing operations.
type nullRenderer struct{}

func (nullRenderer) Clear()                   {}
func (nullRenderer) SetCell(_, _ int, _ bool) {}
func (nullRenderer) Flush()                   {}

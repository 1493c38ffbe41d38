package chip8

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrogolib/log"
)

// Memory layout constants.
const (
	// MemorySize is the total amount of addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the memory address where programs are loaded and
	// where execution begins. The area below it holds the font glyphs.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	registerCount = 16
	flagRegister  = 0xF
)

// ErrStackUnderflow is returned when a return instruction executes with an
// empty call stack.
var ErrStackUnderflow = errors.New("return executed with empty call stack")

// Config configures an interpreter instance. Renderer and Input default to
// no-op implementations, Rand to a uniform random byte source.
type Config struct {
	Logger   *log.Logger
	Renderer Renderer
	Input    Input

	// Rand supplies random bytes for the RND opcode. Tests replace it with
	// a deterministic source.
	Rand func() byte

	// MaxCycles stops execution after the given number of instruction
	// cycles. 0 means unlimited.
	MaxCycles uint64
}

// Interpreter is the CHIP-8 virtual machine state. It owns memory,
// registers, timers and the framebuffer exclusively for the duration of a
// run, there is no shared mutable state.
type Interpreter struct {
	memory [MemorySize]byte
	v      [registerCount]byte // general purpose registers V0-VF
	i      uint16              // address register
	pc     uint16              // program counter
	stack  []uint16            // subroutine return addresses

	delayTimer byte
	soundTimer byte

	display  Display
	renderer Renderer
	input    Input
	rand     func() byte
	logger   *log.Logger

	maxCycles uint64
	cycles    uint64

	// previousWord is the last executed instruction word, reported in
	// decode error diagnostics.
	previousWord uint16
}

// New creates an interpreter with the font table loaded at offset 0 and the
// program loaded at ProgramStart. It fails if the program does not fit into
// memory.
func New(program []byte, cfg Config) (*Interpreter, error) {
	if len(program) > MaxProgramSize {
		return nil, fmt.Errorf("program of %d bytes exceeds the maximum size of %d bytes",
			len(program), MaxProgramSize)
	}

	in := &Interpreter{
		pc:        ProgramStart,
		renderer:  cfg.Renderer,
		input:     cfg.Input,
		rand:      cfg.Rand,
		logger:    cfg.Logger,
		maxCycles: cfg.MaxCycles,
	}
	if in.renderer == nil {
		in.renderer = nullRenderer{}
	}
	if in.input == nil {
		in.input = nullInput{}
	}
	if in.rand == nil {
		in.rand = func() byte { return byte(rand.UintN(256)) }
	}
	if in.logger == nil {
		in.logger = log.NewWithConfig(log.DefaultConfig())
	}

	copy(in.memory[:], fontset[:])
	copy(in.memory[ProgramStart:], program)
	return in, nil
}

// Display returns the framebuffer for inspection.
func (in *Interpreter) Display() *Display {
	return &in.display
}

// Cycles returns the number of executed instruction cycles.
func (in *Interpreter) Cycles() uint64 {
	return in.cycles
}

// fetch reads the two instruction bytes at the program counter. ok is false
// when the counter is at or beyond the end of memory, which terminates
// program execution normally.
func (in *Interpreter) fetch() (word uint16, ok bool) {
	pc := int(in.pc)
	if pc+1 >= MemorySize {
		return 0, false
	}
	return assembleWord(in.memory[pc], in.memory[pc+1]), true
}

// tickTimers decrements both timers by one, saturating at zero. Timers tick
// once per executed instruction, not on a wall-clock cadence, so their real
// time rate follows the execution speed.
func (in *Interpreter) tickTimers() {
	if in.delayTimer > 0 {
		in.delayTimer--
	}
	if in.soundTimer > 0 {
		in.soundTimer--
		// Reaching zero is where an audible tone would stop. No sound
		// hardware is emulated.
	}
}

// Step executes a single fetch-decode-execute-tick cycle. It returns done
// when the end of memory is reached, which is the normal way programs
// terminate.
func (in *Interpreter) Step() (done bool, err error) {
	word, ok := in.fetch()
	if !ok {
		return true, nil
	}
	ins := decode(word)

	// The pending key state feeds the Ex9E/ExA1 skip opcodes and lets the
	// frontend surface an abort request every cycle.
	key, pressed, err := in.input.Poll()
	if err != nil {
		return true, err
	}

	in.logger.Debug("executing instruction",
		log.Hex("pc", in.pc),
		log.Hex("word", word),
		log.String("mnemonic", mnemonic(word)))

	// Advance past the instruction before dispatch so that jump and skip
	// handlers can overwrite the default advance.
	in.pc += 2

	if err := in.execute(ins, key, pressed); err != nil {
		return true, err
	}

	in.previousWord = word
	in.tickTimers()
	in.cycles++
	return false, nil
}

// Run executes instruction cycles until the program terminates, a fatal
// error occurs or the context is cancelled.
func (in *Interpreter) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := in.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if in.maxCycles > 0 && in.cycles >= in.maxCycles {
			in.logger.Debug("cycle limit reached", log.Int("cycles", int(in.cycles)))
			return nil
		}
	}
}

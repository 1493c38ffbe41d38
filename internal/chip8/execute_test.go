package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// fakeInput replays scripted key presses.
type fakeInput struct {
	pressed []byte // consumed by Poll, one per cycle
	awaited []byte // consumed by Await
	err     error
}

func (f *fakeInput) Poll() (byte, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	if len(f.pressed) == 0 {
		return 0, false, nil
	}
	key := f.pressed[0]
	f.pressed = f.pressed[1:]
	return key, true, nil
}

func (f *fakeInput) Await() (byte, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := f.awaited[0]
	f.awaited = f.awaited[1:]
	return key, nil
}

// runProgram executes the program until it halts or errors.
func runProgram(t *testing.T, program []byte, cfg Config) (*Interpreter, error) {
	t.Helper()

	in := newTestInterpreter(t, program, cfg)
	for {
		done, err := in.Step()
		if err != nil || done {
			return in, err
		}
	}
}

func TestOpJumpAndSkips(t *testing.T) {
	tests := []struct {
		name     string
		program  []byte
		register byte
		expected byte
	}{
		{
			name: "3xkk skips on equal value",
			program: []byte{
				0x60, 0x05, // V0 = 5
				0x30, 0x05, // skip next
				0x61, 0xFF, // skipped
			},
			register: 1,
			expected: 0,
		},
		{
			name: "4xkk skips on unequal value",
			program: []byte{
				0x60, 0x05,
				0x40, 0x06, // skip next
				0x61, 0xFF,
			},
			register: 1,
			expected: 0,
		},
		{
			name: "5xy0 skips on equal registers",
			program: []byte{
				0x60, 0x07,
				0x61, 0x07,
				0x50, 0x10, // skip next
				0x62, 0xFF,
			},
			register: 2,
			expected: 0,
		},
		{
			name: "9xy0 skips on unequal registers",
			program: []byte{
				0x60, 0x07,
				0x61, 0x08,
				0x90, 0x10, // skip next
				0x62, 0xFF,
			},
			register: 2,
			expected: 0,
		},
		{
			name: "1nnn jumps over code",
			program: []byte{
				0x12, 0x06, // jump to 0x206
				0x60, 0xFF, // never executed
				0x13, 0x37, // never executed
				0x61, 0x01, // 0x206: V1 = 1
			},
			register: 1,
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := runProgram(t, padToEnd(tt.program), Config{})
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, in.v[tt.register])
		})
	}
}

// padToEnd appends a jump off the end of memory so programs halt cleanly
// after their last intended instruction.
func padToEnd(program []byte) []byte {
	return append(program, 0x1F, 0xFE)
}

func TestOpCallReturn(t *testing.T) {
	program := []byte{
		0x22, 0x06, // 0x200: call 0x206
		0x61, 0x02, // 0x202: V1 = 2 (after return)
		0x1F, 0xFE, // 0x204: halt
		0x60, 0x01, // 0x206: V0 = 1
		0x00, 0xEE, // 0x208: return
	}
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)

	assert.Equal(t, byte(1), in.v[0])
	assert.Equal(t, byte(2), in.v[1])
	assert.Equal(t, 0, len(in.stack))
}

func TestOpRegisterOps(t *testing.T) {
	tests := []struct {
		name     string
		op       byte // low nibble of 8xyN
		v0, v1   byte
		expected byte
		flag     byte
		hasFlag  bool
	}{
		{name: "8xy0 assign", op: 0x0, v0: 0x12, v1: 0x34, expected: 0x34},
		{name: "8xy1 or", op: 0x1, v0: 0xF0, v1: 0x0F, expected: 0xFF},
		{name: "8xy2 and", op: 0x2, v0: 0xF0, v1: 0x3C, expected: 0x30},
		{name: "8xy3 xor", op: 0x3, v0: 0xFF, v1: 0x0F, expected: 0xF0},
		{name: "8xy4 add overflow", op: 0x4, v0: 0xFF, v1: 0x01, expected: 0x00, flag: 1, hasFlag: true},
		{name: "8xy4 add no overflow", op: 0x4, v0: 0x01, v1: 0x01, expected: 0x02, flag: 0, hasFlag: true},
		{name: "8xy5 sub no borrow", op: 0x5, v0: 0x05, v1: 0x03, expected: 0x02, flag: 1, hasFlag: true},
		{name: "8xy5 sub borrow", op: 0x5, v0: 0x03, v1: 0x05, expected: 0xFE, flag: 0, hasFlag: true},
		{name: "8xy7 subn no borrow", op: 0x7, v0: 0x03, v1: 0x05, expected: 0x02, flag: 1, hasFlag: true},
		{name: "8xy7 subn borrow", op: 0x7, v0: 0x05, v1: 0x03, expected: 0xFE, flag: 0, hasFlag: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := padToEnd([]byte{
				0x60, tt.v0, // V0
				0x61, tt.v1, // V1
				0x80, 0x10 | tt.op, // 8 0 1 N
			})
			in, err := runProgram(t, program, Config{})
			assert.NoError(t, err)

			assert.Equal(t, tt.expected, in.v[0])
			if tt.hasFlag {
				assert.Equal(t, tt.flag, in.v[flagRegister])
			}
		})
	}
}

// Both shift directions capture the least significant bit in the flag
// register before shifting, matching the emulated machine's deviation from
// canonical CHIP-8.
func TestOpShifts(t *testing.T) {
	tests := []struct {
		name     string
		op       byte
		value    byte
		expected byte
		flag     byte
	}{
		{name: "8xy6 shift right odd", op: 0x6, value: 0b0000_0101, expected: 0b0000_0010, flag: 1},
		{name: "8xy6 shift right even", op: 0x6, value: 0b0000_0100, expected: 0b0000_0010, flag: 0},
		{name: "8xyE shift left odd", op: 0xE, value: 0b1000_0001, expected: 0b0000_0010, flag: 1},
		{name: "8xyE shift left even", op: 0xE, value: 0b1000_0010, expected: 0b0000_0100, flag: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := padToEnd([]byte{
				0x60, tt.value,
				0x80, 0x10 | tt.op,
			})
			in, err := runProgram(t, program, Config{})
			assert.NoError(t, err)

			assert.Equal(t, tt.expected, in.v[0])
			assert.Equal(t, tt.flag, in.v[flagRegister])
		})
	}
}

func TestOpAddressRegister(t *testing.T) {
	program := padToEnd([]byte{
		0xA1, 0x23, // I = 0x123
		0x60, 0x10, // V0 = 0x10
		0xF0, 0x1E, // I += V0
	})
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x133), in.i)
}

func TestOpJumpWithOffset(t *testing.T) {
	program := []byte{
		0x60, 0x04, // V0 = 4
		0xB2, 0x02, // jump to 0x202 + 4
		0x61, 0xFF, // 0x204: skipped
		0x61, 0x01, // 0x206: V1 = 1
		0x1F, 0xFE,
	}
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)
	assert.Equal(t, byte(1), in.v[1])
}

func TestOpRandom(t *testing.T) {
	// A deterministic source returning 0xAB, masked with 0x0F.
	cfg := Config{Rand: func() byte { return 0xAB }}
	program := padToEnd([]byte{0xC0, 0x0F})

	in, err := runProgram(t, program, cfg)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x0B), in.v[0])
}

func TestOpDrawSetsCollisionFlag(t *testing.T) {
	program := padToEnd([]byte{
		0xA0, 0x00, // I = 0 (glyph 0 sprite data)
		0x60, 0x00, // V0 = 0
		0xD0, 0x05, // draw 5 rows at (0, 0)
		0xD0, 0x05, // draw again, every pixel collides
	})
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)

	// The second identical draw erased everything and set the flag.
	assert.Equal(t, byte(1), in.v[flagRegister])
	for y := range DisplayHeight {
		for x := range DisplayWidth {
			assert.False(t, in.Display().Pixel(x, y))
		}
	}
}

func TestOpDrawOutOfMemory(t *testing.T) {
	program := padToEnd([]byte{
		0xAF, 0xFF, // I = 0xFFF
		0xD0, 0x05, // sprite read would cross the end of memory
	})
	_, err := runProgram(t, program, Config{})
	assert.ErrorContains(t, err, "exceeds memory")
}

func TestOpKeySkips(t *testing.T) {
	t.Run("Ex9E skips when key matches", func(t *testing.T) {
		program := padToEnd([]byte{
			0x60, 0x0A, // V0 = 0xA
			0xE0, 0x9E, // skip if key == V0
			0x61, 0xFF,
		})
		// One key press per executed cycle.
		input := &fakeInput{pressed: []byte{0xA, 0xA, 0xA, 0xA}}
		in, err := runProgram(t, program, Config{Input: input})
		assert.NoError(t, err)
		assert.Equal(t, byte(0), in.v[1])
	})

	t.Run("ExA1 skips when key differs", func(t *testing.T) {
		program := padToEnd([]byte{
			0x60, 0x0A,
			0xE0, 0xA1, // skip if key != V0
			0x61, 0xFF,
		})
		input := &fakeInput{pressed: []byte{0x1, 0x1, 0x1, 0x1}}
		in, err := runProgram(t, program, Config{Input: input})
		assert.NoError(t, err)
		assert.Equal(t, byte(0), in.v[1])
	})

	t.Run("Ex9E is a no-op without key press", func(t *testing.T) {
		program := padToEnd([]byte{
			0x60, 0x0A,
			0xE0, 0x9E,
			0x61, 0xFF,
		})
		in, err := runProgram(t, program, Config{})
		assert.NoError(t, err)
		assert.Equal(t, byte(0xFF), in.v[1])
	})
}

func TestOpAwaitKey(t *testing.T) {
	program := padToEnd([]byte{
		0xF0, 0x0A, // block until key press, V0 = key
	})
	input := &fakeInput{awaited: []byte{0xC}}
	in, err := runProgram(t, program, Config{Input: input})
	assert.NoError(t, err)
	assert.Equal(t, byte(0xC), in.v[0])
}

func TestOpAwaitKeyAborted(t *testing.T) {
	program := padToEnd([]byte{0xF0, 0x0A})
	input := &fakeInput{err: ErrAborted}
	_, err := runProgram(t, program, Config{Input: input})
	assert.True(t, errors.Is(err, ErrAborted))
}

func TestOpTimersAndDelayRead(t *testing.T) {
	program := padToEnd([]byte{
		0x60, 0x10, // V0 = 0x10
		0xF0, 0x15, // delay = V0, ticks to 0x0F this cycle
		0xF1, 0x07, // V1 = delay
	})
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)
	assert.Equal(t, byte(0x0F), in.v[1])
}

func TestOpFontGlyphAddress(t *testing.T) {
	program := padToEnd([]byte{
		0x60, 0x0B, // V0 = 0xB
		0xF0, 0x29, // I = glyph address of digit B
	})
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xB*GlyphSize), in.i)

	// The glyph bytes at the computed address are the fontset entry.
	assert.Equal(t, fontset[0xB*GlyphSize], in.memory[in.i])
}

func TestOpBCD(t *testing.T) {
	tests := []struct {
		value    byte
		expected [3]byte
	}{
		{value: 0, expected: [3]byte{0, 0, 0}},
		{value: 7, expected: [3]byte{0, 0, 7}},
		{value: 42, expected: [3]byte{0, 4, 2}},
		{value: 255, expected: [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		program := padToEnd([]byte{
			0x60, tt.value,
			0xA3, 0x00, // I = 0x300
			0xF0, 0x33, // BCD store
		})
		in, err := runProgram(t, program, Config{})
		assert.NoError(t, err)

		assert.Equal(t, tt.expected[0], in.memory[0x300])
		assert.Equal(t, tt.expected[1], in.memory[0x301])
		assert.Equal(t, tt.expected[2], in.memory[0x302])
	}
}

func TestOpBCDOutOfMemory(t *testing.T) {
	program := padToEnd([]byte{
		0xAF, 0xFE, // I = 0xFFE, third BCD byte would land at 0x1000
		0xF0, 0x33,
	})
	_, err := runProgram(t, program, Config{})
	assert.ErrorContains(t, err, "exceeds memory")
}

func TestOpRegisterStoreLoad(t *testing.T) {
	program := padToEnd([]byte{
		0x60, 0x11, // V0 = 0x11
		0x61, 0x22, // V1 = 0x22
		0x62, 0x33, // V2 = 0x33
		0xA3, 0x00, // I = 0x300
		0xF2, 0x55, // store V0..V2 at I
		0x63, 0x00, // V3 = 0 scratch
		0x60, 0x00, // clear V0
		0x61, 0x00,
		0x62, 0x00,
		0xF2, 0x65, // load V0..V2 from I
	})
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)

	assert.Equal(t, byte(0x11), in.v[0])
	assert.Equal(t, byte(0x22), in.v[1])
	assert.Equal(t, byte(0x33), in.v[2])
	assert.Equal(t, byte(0x11), in.memory[0x300])
	assert.Equal(t, byte(0x22), in.memory[0x301])
	assert.Equal(t, byte(0x33), in.memory[0x302])
}

func TestOpRegisterStoreOutOfMemory(t *testing.T) {
	program := padToEnd([]byte{
		0xAF, 0xFF, // I = 0xFFF
		0xF1, 0x55, // storing V0..V1 would cross the end of memory
	})
	_, err := runProgram(t, program, Config{})
	assert.ErrorContains(t, err, "exceeds memory")
}

func TestOpClearScreen(t *testing.T) {
	program := padToEnd([]byte{
		0xA0, 0x00,
		0x60, 0x00,
		0xD0, 0x05, // draw glyph 0
		0x00, 0xE0, // clear
	})
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)

	for y := range DisplayHeight {
		for x := range DisplayWidth {
			assert.False(t, in.Display().Pixel(x, y))
		}
	}
	// Clearing rewrote nothing into VF, the draw before left it at 0.
	assert.Equal(t, byte(0), in.v[flagRegister])
}

func TestOpUnknownPatterns(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
	}{
		{name: "8xy8 invalid arithmetic", program: []byte{0x80, 0x18}},
		{name: "5xy1 invalid compare", program: []byte{0x50, 0x11}},
		{name: "9xy1 invalid compare", program: []byte{0x90, 0x11}},
		{name: "Ex00 invalid key skip", program: []byte{0xE0, 0x00}},
		{name: "Fx99 invalid misc", program: []byte{0xF0, 0x99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runProgram(t, tt.program, Config{})

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
		})
	}
}

// 0nnn machine code calls are ignored rather than treated as errors.
func TestOpMachineCodeIgnored(t *testing.T) {
	program := padToEnd([]byte{
		0x01, 0x23, // SYS 0x123
		0x60, 0x01,
	})
	in, err := runProgram(t, program, Config{})
	assert.NoError(t, err)
	assert.Equal(t, byte(1), in.v[0])
}

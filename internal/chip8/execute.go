package chip8

import "fmt"

// execute dispatches a decoded instruction to its opcode handler. key and
// pressed describe the keypad state sampled for this cycle.
//
// The program counter has already been advanced past the instruction, a
// handler that jumps or skips overwrites that default.
func (in *Interpreter) execute(ins instruction, key byte, pressed bool) error {
	switch ins.op {
	case 0x0:
		switch ins.addr {
		case 0x0E0:
			in.display.Clear(in.renderer)
		case 0x0EE:
			return in.opReturn()
		default:
			// 0nnn executes a machine code routine on the original
			// hardware. Ignored, like all modern interpreters do.
		}

	case 0x1: // 1nnn: jump
		in.pc = ins.addr

	case 0x2: // 2nnn: call subroutine
		in.stack = append(in.stack, in.pc)
		in.pc = ins.addr

	case 0x3: // 3xkk: skip if Vx == kk
		in.skipIf(in.v[ins.x] == ins.kk)

	case 0x4: // 4xkk: skip if Vx != kk
		in.skipIf(in.v[ins.x] != ins.kk)

	case 0x5: // 5xy0: skip if Vx == Vy
		if ins.n != 0 {
			return in.decodeError(ins.word)
		}
		in.skipIf(in.v[ins.x] == in.v[ins.y])

	case 0x6: // 6xkk: Vx = kk
		in.v[ins.x] = ins.kk

	case 0x7: // 7xkk: Vx += kk, no flag effect
		in.v[ins.x] += ins.kk

	case 0x8:
		return in.opArithmetic(ins)

	case 0x9: // 9xy0: skip if Vx != Vy
		if ins.n != 0 {
			return in.decodeError(ins.word)
		}
		in.skipIf(in.v[ins.x] != in.v[ins.y])

	case 0xA: // Annn: I = nnn
		in.i = ins.addr

	case 0xB: // Bnnn: jump to nnn + V0
		in.pc = ins.addr + uint16(in.v[0])

	case 0xC: // Cxkk: Vx = random byte & kk
		in.v[ins.x] = in.rand() & ins.kk

	case 0xD: // Dxyn: draw sprite
		return in.opDraw(ins)

	case 0xE:
		return in.opKeySkip(ins, key, pressed)

	case 0xF:
		return in.opMisc(ins)
	}
	return nil
}

// opReturn pops the return address of the current subroutine. Returning with
// an empty stack is a programming error in the executed program and fatal.
func (in *Interpreter) opReturn() error {
	if len(in.stack) == 0 {
		return ErrStackUnderflow
	}
	in.pc = in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	return nil
}

// opArithmetic handles the 8xyN register-to-register operation family.
func (in *Interpreter) opArithmetic(ins instruction) error {
	x, y := ins.x, ins.y

	switch ins.n {
	case 0x0: // Vx = Vy
		in.v[x] = in.v[y]
	case 0x1: // Vx |= Vy
		in.v[x] |= in.v[y]
	case 0x2: // Vx &= Vy
		in.v[x] &= in.v[y]
	case 0x3: // Vx ^= Vy
		in.v[x] ^= in.v[y]

	case 0x4: // Vx += Vy, VF = carry
		result := uint16(in.v[x]) + uint16(in.v[y])
		in.v[x] = byte(result)
		in.setFlag(result > 0xFF)

	case 0x5: // Vx -= Vy, VF = 1 if no borrow
		borrow := in.v[y] > in.v[x]
		in.v[x] -= in.v[y]
		in.setFlag(!borrow)

	case 0x6: // Vx >>= 1, VF = LSB before the shift
		in.v[flagRegister] = in.v[x] & 1
		in.v[x] >>= 1

	case 0x7: // Vx = Vy - Vx, VF = 1 if no borrow
		borrow := in.v[x] > in.v[y]
		in.v[x] = in.v[y] - in.v[x]
		in.setFlag(!borrow)

	case 0xE: // Vx <<= 1
		// The flag takes the least significant bit here as well, a known
		// deviation from canonical CHIP-8 which uses the MSB for left
		// shifts. Kept for compatibility with the emulated machine.
		in.v[flagRegister] = in.v[x] & 1
		in.v[x] <<= 1

	default:
		return in.decodeError(ins.word)
	}
	return nil
}

// opDraw implements Dxyn: blit an n-row sprite read from memory at I to the
// coordinates held in Vx/Vy. VF is rewritten with the collision result on
// every draw.
func (in *Interpreter) opDraw(ins instruction) error {
	start := int(in.i)
	end := start + int(ins.n)
	if end > MemorySize {
		return fmt.Errorf("sprite read at 0x%03X with height %d exceeds memory", in.i, ins.n)
	}

	x := int(in.v[ins.x])
	y := int(in.v[ins.y])
	collision := in.display.DrawSprite(in.renderer, x, y, in.memory[start:end])
	in.setFlag(collision)
	return nil
}

// opKeySkip handles Ex9E and ExA1. Both are no-ops while no key is pressed.
func (in *Interpreter) opKeySkip(ins instruction, key byte, pressed bool) error {
	switch ins.kk {
	case 0x9E: // skip if key == Vx
		in.skipIf(pressed && key == in.v[ins.x])
	case 0xA1: // skip if key != Vx
		in.skipIf(pressed && key != in.v[ins.x])
	default:
		return in.decodeError(ins.word)
	}
	return nil
}

// opMisc handles the FxNN family: timers, key await, memory transfers.
func (in *Interpreter) opMisc(ins instruction) error {
	x := ins.x

	switch ins.kk {
	case 0x07: // Vx = delay timer
		in.v[x] = in.delayTimer

	case 0x0A: // block until a key press, Vx = key
		key, err := in.input.Await()
		if err != nil {
			return err
		}
		in.v[x] = key

	case 0x15: // delay timer = Vx
		in.delayTimer = in.v[x]

	case 0x18: // sound timer = Vx
		in.soundTimer = in.v[x]

	case 0x1E: // I += Vx, no flag effect
		in.i += uint16(in.v[x])

	case 0x29: // I = font glyph address for digit Vx
		in.i = uint16(in.v[x]) * GlyphSize

	case 0x33: // store BCD of Vx at I, I+1, I+2
		if int(in.i)+2 >= MemorySize {
			return fmt.Errorf("BCD store at 0x%03X exceeds memory", in.i)
		}
		value := in.v[x]
		in.memory[in.i] = value / 100
		in.memory[in.i+1] = value / 10 % 10
		in.memory[in.i+2] = value % 10

	case 0x55: // store V0..Vx at I
		if int(in.i)+int(x) >= MemorySize {
			return fmt.Errorf("register store at 0x%03X for V0-V%X exceeds memory", in.i, x)
		}
		for r := byte(0); r <= x; r++ {
			in.memory[in.i+uint16(r)] = in.v[r]
		}

	case 0x65: // load V0..Vx from I
		if int(in.i)+int(x) >= MemorySize {
			return fmt.Errorf("register load at 0x%03X for V0-V%X exceeds memory", in.i, x)
		}
		for r := byte(0); r <= x; r++ {
			in.v[r] = in.memory[in.i+uint16(r)]
		}

	default:
		return in.decodeError(ins.word)
	}
	return nil
}

// skipIf advances the program counter over the next instruction if the
// condition holds.
func (in *Interpreter) skipIf(condition bool) {
	if condition {
		in.pc += 2
	}
}

// setFlag writes the flag register VF.
func (in *Interpreter) setFlag(set bool) {
	if set {
		in.v[flagRegister] = 1
	} else {
		in.v[flagRegister] = 0
	}
}

// decodeError builds the fatal diagnostic for an unrecognized instruction.
func (in *Interpreter) decodeError(word uint16) error {
	return &DecodeError{
		Word:     word,
		Previous: in.previousWord,
	}
}

// Package chip8 implements the CHIP-8 virtual machine: memory, registers,
// timers, the monochrome framebuffer and the fetch-decode-execute loop for
// the original 35 instruction set.
//
// The package has no output or input dependencies of its own, the hosting
// frontend provides implementations of the Renderer and Input interfaces.
package chip8

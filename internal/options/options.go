// Package options contains the program options.
package options

// Program options of the interpreter.
type Program struct {
	Input string // path of the CHIP-8 binary to run

	Cycles uint64 // stop after this many instruction cycles, 0 = unlimited
	Debug  bool   // enable debug logging
	Quiet  bool   // only log errors
}

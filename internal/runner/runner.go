// Package runner wires the loader, the terminal frontend and the
// interpreter together for a complete emulation run.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/log"
)

// Run executes the program file named in the options inside the hosting
// terminal. It returns nil both on normal program termination and on a
// user-triggered abort.
func Run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	program, err := loader.Load(opts.Input)
	if err != nil {
		return err
	}

	term, err := terminal.New()
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer term.Close()

	if err := term.AwaitFittingWindow(); err != nil {
		return abortToNil(err)
	}

	in, err := chip8.New(program, chip8.Config{
		Logger:    logger,
		Renderer:  term,
		Input:     term,
		MaxCycles: opts.Cycles,
	})
	if err != nil {
		return err
	}

	logger.Debug("program loaded",
		log.String("file", opts.Input),
		log.Int("size", len(program)))

	if err := in.Run(ctx); err != nil {
		return abortToNil(err)
	}

	term.ShowMessage("Program ended. Press any key to continue.")
	return abortToNil(term.AwaitAnyKey())
}

// abortToNil converts the user abort signal and context cancellation into a
// clean shutdown, both exit with code 0.
func abortToNil(err error) error {
	if errors.Is(err, chip8.ErrAborted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

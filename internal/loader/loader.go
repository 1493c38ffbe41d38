// Package loader handles program file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Load reads a CHIP-8 program file. The file is a raw byte stream without
// any header, size validation against the machine's memory happens at
// interpreter construction.
func Load(path string) ([]byte, error) {
	program, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("program file %s was not found", path)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("no permission to read program file %s", path)
	case err != nil:
		return nil, fmt.Errorf("reading program file %s: %w", path, err)
	}
	return program, nil
}

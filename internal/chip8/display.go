package chip8

// Display dimensions in logical pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Renderer draws framebuffer changes onto an output surface. The interpreter
// only requests redraws for cells it has determined changed, plus one full
// surface clear, and issues a single flush per sprite draw.
type Renderer interface {
	// Clear wipes the whole surface.
	Clear()
	// SetCell draws the on/off state of one logical pixel.
	SetCell(x, y int, on bool)
	// Flush writes all buffered output to the surface.
	Flush()
}

// Display is the monochrome framebuffer. Every pixel is either off (false)
// or on (true) and is only ever toggled through XOR during sprite draws.
type Display struct {
	grid [DisplayHeight][DisplayWidth]bool
}

// Pixel returns the state of a single pixel. Out of range coordinates read
// as off.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return d.grid[y][x]
}

// Clear turns every pixel off and wipes the rendering surface.
func (d *Display) Clear(r Renderer) {
	d.grid = [DisplayHeight][DisplayWidth]bool{}
	r.Clear()
	r.Flush()
}

// DrawSprite XORs the sprite rows onto the framebuffer with its top left
// corner anchored at (x, y) and reports every changed cell to the renderer.
// It returns whether any pixel flipped from on to off, the collision signal.
//
// Sprite pixels that fall outside the grid are clipped, they neither wrap
// around nor affect the collision result.
func (d *Display) DrawSprite(r Renderer, x, y int, sprite []byte) bool {
	var collision, changed bool

	for row, b := range sprite {
		for col, bit := range bitsMSB(b) {
			tx := x + col
			ty := y + row
			if tx < 0 || tx >= DisplayWidth || ty < 0 || ty >= DisplayHeight {
				continue
			}

			previous := d.grid[ty][tx]
			current := previous != bit // XOR
			d.grid[ty][tx] = current

			if previous && !current {
				collision = true
			}
			if current != previous {
				r.SetCell(tx, ty, current)
				changed = true
			}
		}
	}

	if changed {
		r.Flush()
	}
	return collision
}

package chip8

// bitsMSB returns the 8 bits of b as booleans, most significant bit first.
// Sprite rows are encoded in this order, the leftmost pixel is the high bit.
func bitsMSB(b byte) [8]bool {
	var bits [8]bool
	for i := range bits {
		bits[i] = (b>>(7-i))&1 == 1
	}
	return bits
}

// bitsLSB returns the 8 bits of b as booleans, least significant bit first.
func bitsLSB(b byte) [8]bool {
	var bits [8]bool
	for i := range bits {
		bits[i] = (b>>i)&1 == 1
	}
	return bits
}

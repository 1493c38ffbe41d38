// Package keypad maps host keyboard keys onto the 16 key hexadecimal keypad.
package keypad

import "unicode"

// The keypad layout follows the common convention of mapping the left hand
// block of a QWERTY keyboard onto the 4x4 hex pad:
//
//	Keypad       Keyboard
//	+-+-+-+-+    +-+-+-+-+
//	|1|2|3|C|    |1|2|3|4|
//	+-+-+-+-+    +-+-+-+-+
//	|4|5|6|D|    |Q|W|E|R|
//	+-+-+-+-+ => +-+-+-+-+
//	|7|8|9|E|    |A|S|D|F|
//	+-+-+-+-+    +-+-+-+-+
//	|A|0|B|F|    |Z|X|C|V|
//	+-+-+-+-+    +-+-+-+-+
var layout = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Map translates a physical key into its hex keypad digit. ok is false for
// keys that are not part of the keypad layout.
func Map(ch rune) (digit byte, ok bool) {
	digit, ok = layout[unicode.ToLower(ch)]
	return digit, ok
}

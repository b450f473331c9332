package pkg

// Align rounds value up to the next multiple of alignment. Every region of a
// WAD is placed at a 0x40 aligned offset.
func Align(value, alignment uint32) uint32 {
	if alignment == 0 {
		return value
	}
	if rem := value % alignment; rem != 0 {
		return value + alignment - rem
	}
	return value
}

// Pad returns data extended with zero bytes until its length is a multiple of
// alignment. The input slice is not modified.
func Pad(data []byte, alignment uint32) []byte {
	padded := make([]byte, Align(uint32(len(data)), alignment))
	copy(padded, data)
	return padded
}

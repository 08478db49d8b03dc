package format

import "encoding/binary"

// Freelist link codecs. A freed chunk stores the previous list head in its
// first LinkWidth bytes, little-endian. Width is 4 for compact handles and 8
// for wide handles.

// ReadLink reads a little-endian link of the given width from b.
func ReadLink(b []byte, width int) uint64 {
	if width == 4 {
		return uint64(binary.LittleEndian.Uint32(b))
	}
	return binary.LittleEndian.Uint64(b)
}

// PutLink writes a little-endian link of the given width into b.
func PutLink(b []byte, width int, raw uint64) {
	if width == 4 {
		binary.LittleEndian.PutUint32(b, uint32(raw))
		return
	}
	binary.LittleEndian.PutUint64(b, raw)
}

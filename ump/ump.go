// Package ump provides the Universal MIDI Packet (UMP) word-size table and
// the big-endian word encoding NetUMP uses on the wire.
//
// A UMP message is 1, 2, 3, or 4 32-bit words; its length is determined
// solely by the 4-bit Message Type (MT) field in the top nibble of the
// first word.
package ump

// sizeByMT maps the 4-bit MT field (0-15) to the number of 32-bit words in
// a UMP message of that type. Grounded on NetUMP.cpp's static UMPSize table:
// MT 0,1,2,6,7 -> 1 word; MT 3,4,8,9,10 -> 2; MT 11,12 -> 3; MT 5,13,14,15 -> 4.
var sizeByMT = [16]int{
	1, 1, 1, 2, 2, 4, 1, 1, 2, 2, 2, 3, 3, 4, 4, 4,
}

// MessageType returns the 4-bit MT field of a UMP word.
func MessageType(word uint32) int {
	return int(word >> 28)
}

// WordCount returns the number of 32-bit words (1-4) in a UMP message whose
// first word is firstWord.
func WordCount(firstWord uint32) int {
	return sizeByMT[MessageType(firstWord)]
}

// Encode writes a UMP message's words into dst in network (big-endian)
// byte order, returning the number of bytes written. dst must have room
// for WordCount(words[0])*4 bytes.
func Encode(dst []byte, words []uint32) int {
	n := WordCount(words[0])
	for i := 0; i < n; i++ {
		dst[i*4+0] = byte(words[i] >> 24)
		dst[i*4+1] = byte(words[i] >> 16)
		dst[i*4+2] = byte(words[i] >> 8)
		dst[i*4+3] = byte(words[i])
	}
	return n * 4
}

// Decode reconstructs a UMP message from big-endian bytes in src, writing
// up to 4 words into dst and returning the word count consumed. It decodes
// only as many words as WordCount(firstWord) indicates, so callers must
// ensure src has at least that many groups of 4 bytes available.
func Decode(src []byte, dst []uint32) int {
	first := be32(src)
	n := WordCount(first)
	dst[0] = first
	for i := 1; i < n; i++ {
		dst[i] = be32(src[i*4:])
	}
	return n
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

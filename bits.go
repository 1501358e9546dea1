package repack

import (
	"encoding/binary"
)

// byteReader abstracts reading fields from a byte slice where the fields
// are all some size in bits, laid end to end from the start of the slice.
// The number of bits per field must be no more than 64 - 8 == 56. Bits past
// the end of the slice read as zero.
type byteReader struct {
	buf  []byte
	bits uint
	mask uint64
	msb  bool
}

func newByteReader(buf []byte, bits uint, msb bool) byteReader {
	return byteReader{
		buf:  buf,
		bits: bits,
		mask: 1<<bits - 1,
		msb:  msb,
	}
}

// rawRead loads the 8 bytes starting at byte n, in the byte order matching
// the bit order of the reader.
func (br *byteReader) rawRead(n uint64) uint64 {
	var tmp [8]byte
	if n < uint64(len(br.buf)) {
		copy(tmp[:], br.buf[n:])
	}
	if br.msb {
		return binary.BigEndian.Uint64(tmp[:])
	}
	return binary.LittleEndian.Uint64(tmp[:])
}

// Get returns the field with the given index.
func (br *byteReader) Get(idx uint64) uint64 {
	b := idx * uint64(br.bits)
	if br.msb {
		return br.rawRead(b/8) << (b % 8) >> (64 - br.bits)
	}
	return br.rawRead(b/8) >> (b % 8) & br.mask
}

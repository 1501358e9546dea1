package repack

import "unsafe"

// Unsigned is the set of element types a buffer may hold.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// widthOf returns the number of bits in an element of type T.
func widthOf[T Unsigned]() uint {
	var v T
	return uint(unsafe.Sizeof(v)) * 8
}

// lowMask returns a mask of the n lowest order bits. n may be 64.
func lowMask(n uint) uint64 { return 1<<n - 1 }

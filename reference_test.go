package repack

import (
	"math/big"

	"github.com/zeebo/pcg"
)

// referenceFields computes count fields of |bits| bits from the low ws bits
// of every value in src using arbitrary precision arithmetic. Bits past the
// end of src are zero.
func referenceFields(src []uint64, ws uint, bits int, count int) []uint64 {
	n := uint(bits)
	if bits < 0 {
		n = uint(-bits)
	}
	mask := new(big.Int).SetUint64(lowMask(n))
	wmask := lowMask(ws)

	v := new(big.Int)
	out := make([]uint64, count)

	if bits < 0 {
		for j := len(src) - 1; j >= 0; j-- {
			v.Lsh(v, ws)
			v.Or(v, new(big.Int).SetUint64(src[j]&wmask))
		}
		for i := range out {
			f := new(big.Int).Rsh(v, uint(i)*n)
			out[i] = f.And(f, mask).Uint64()
		}
		return out
	}

	for _, x := range src {
		v.Lsh(v, ws)
		v.Or(v, new(big.Int).SetUint64(x&wmask))
	}
	pad := uint(count) * n
	v.Lsh(v, pad)
	total := ws*uint(len(src)) + pad
	for i := range out {
		f := new(big.Int).Rsh(v, total-uint(i+1)*n)
		out[i] = f.And(f, mask).Uint64()
	}
	return out
}

func widen[T Unsigned](xs []T) []uint64 {
	out := make([]uint64, len(xs))
	for i, x := range xs {
		out[i] = uint64(x)
	}
	return out
}

func randomSlice[T Unsigned](n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = T(pcg.Uint64())
	}
	return out
}

// bytes is a byte slice type that does not take the []byte fast path.
type bytes []octet

type octet uint8

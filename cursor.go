package repack

// cursor walks the bit stream formed by concatenating the low ws bits of
// every source element, producing consecutive fields. Fields may straddle
// element boundaries. Bits past the end of the source read as zero.
type cursor[S Unsigned] struct {
	src []S
	ws  uint
	msb bool
	idx int  // element holding the next bit
	off uint // bits of src[idx] already consumed
}

// newCursor returns a cursor positioned bit bits into the stream.
func newCursor[S Unsigned](src []S, ws uint, msb bool, bit uint64) cursor[S] {
	return cursor[S]{
		src: src,
		ws:  ws,
		msb: msb,
		idx: int(bit / uint64(ws)),
		off: uint(bit % uint64(ws)),
	}
}

// next returns the next n bit field, 1 <= n <= 64. In msb order the first
// bit read is the most significant bit of the field, otherwise it is the
// least significant.
func (c *cursor[S]) next(n uint) (out uint64) {
	for rem := n; rem > 0; {
		if c.idx >= len(c.src) {
			if c.msb {
				out <<= rem
			}
			return out
		}

		avail := c.ws - c.off
		take := min(avail, rem)
		elem := uint64(c.src[c.idx]) & lowMask(c.ws)

		if c.msb {
			out = out<<take | elem>>(avail-take)&lowMask(take)
		} else {
			out |= elem >> c.off & lowMask(take) << (n - rem)
		}

		rem -= take
		if c.off += take; c.off == c.ws {
			c.idx, c.off = c.idx+1, 0
		}
	}
	return out
}

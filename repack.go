// Package repack transcodes buffers of unsigned integers into other buffers
// of unsigned integers, either element by element or by reslicing the bits
// of the source into fields of any width.
package repack

import (
	"github.com/zeebo/mon"
	"go.uber.org/zap"
)

var mapThunk mon.Thunk

// Map writes transformed values from src into dst and returns how many
// elements of dst it wrote.
//
// Without the Bits option, dst[i] is the transform of src[i] for every index
// both slices have. With Bits(n), the bits of src are concatenated into one
// stream and cut into |n| bit fields, and dst[i] is the transform of the ith
// field. See Bits for the two bit orders.
//
// The transform is described in Resolve. Values are truncated to the width
// of the destination elements. The destination is never read. Argument
// errors are returned before anything is written. If the transform fails,
// the elements before the failing one stay written.
func Map[S, D Unsigned](src []S, dst []D, transform interface{}, opts ...Option) (n int, err error) {
	timer := mapThunk.Start()
	defer timer.Stop(&err)

	p, fn, err := prepare[S, D](transform, opts)
	if err != nil {
		return 0, err
	}

	count := p.fields(len(src), len(dst))
	p.log("map", count)

	return transcode(p, src, dst, fn, 0, count)
}

func prepare[S, D Unsigned](transform interface{}, opts []Option) (plan, Func, error) {
	p, err := newPlan(widthOf[S](), widthOf[D](), opts)
	if err != nil {
		return p, nil, err
	}
	fn, err := Resolve(transform)
	if err != nil {
		return p, nil, err
	}
	return p, fn, nil
}

func (p plan) log(msg string, count int) {
	if ce := Logger().Check(zap.DebugLevel, msg); ce != nil {
		mode := "elements"
		if p.repack {
			mode = "bits"
		}
		ce.Write(
			zap.String("mode", mode),
			zap.Uint("src_bits", p.ws),
			zap.Uint("dst_bits", p.wd),
			zap.Uint("field_bits", p.n),
			zap.Bool("msb", p.msb),
			zap.Stringer("policy", p.policy),
			zap.Int("fields", count),
		)
	}
}

// transcode writes the fields with index in [start, end) and returns how
// many it wrote.
func transcode[S, D Unsigned](p plan, src []S, dst []D, fn Func, start, end int) (int, error) {
	if !p.repack {
		for i := start; i < end; i++ {
			v, err := fn(uint64(src[i]))
			if err != nil {
				return i - start, wrapped(err)
			}
			dst[i] = D(v)
		}
		return end - start, nil
	}

	if buf, ok := interface{}(src).([]byte); ok && p.ws == 8 && p.n <= 56 {
		br := newByteReader(buf, p.n, p.msb)
		for i := start; i < end; i++ {
			v, err := fn(br.Get(uint64(i)))
			if err != nil {
				return i - start, wrapped(err)
			}
			dst[i] = D(v)
		}
		return end - start, nil
	}

	c := newCursor(src, p.ws, p.msb, uint64(start)*uint64(p.n))
	for i := start; i < end; i++ {
		v, err := fn(c.next(p.n))
		if err != nil {
			return i - start, wrapped(err)
		}
		dst[i] = D(v)
	}
	return end - start, nil
}

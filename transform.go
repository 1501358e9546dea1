package repack

import (
	"github.com/zeebo/errs"
)

// Func maps a raw value read from the source to the value stored in the
// destination.
type Func func(raw uint64) (uint64, error)

// Table is an indexable collection of values. A table transform maps a raw
// value v to At(v).
type Table interface {
	Len() int
	At(i int) uint64
}

func identity(raw uint64) (uint64, error) { return raw, nil }

// Resolve returns the Func described by transform. The accepted shapes are
//
//	nil                                 the identity
//	Func, func(uint64) (uint64, error)  called with the raw value
//	func(uint64) uint64                 called with the raw value
//	[]uint8, []uint16, []uint32,
//	[]uint64, []uint, Table             looked up by the raw value
//
// Any other shape is an InvalidArgument error. Lookups past the end of a
// table fail with an IndexOutOfRange error.
func Resolve(transform interface{}) (Func, error) {
	switch transform := transform.(type) {
	case nil:
		return identity, nil

	case Func:
		if transform == nil {
			return identity, nil
		}
		return transform, nil
	case func(uint64) (uint64, error):
		if transform == nil {
			return identity, nil
		}
		return transform, nil
	case func(uint64) uint64:
		if transform == nil {
			return identity, nil
		}
		return func(raw uint64) (uint64, error) { return transform(raw), nil }, nil

	case []uint8:
		return lookup(transform), nil
	case []uint16:
		return lookup(transform), nil
	case []uint32:
		return lookup(transform), nil
	case []uint64:
		return lookup(transform), nil
	case []uint:
		return lookup(transform), nil
	case Table:
		return lookupTable(transform), nil

	default:
		return nil, InvalidArgument.New("transform must be nil, a function or a table: got %T", transform)
	}
}

func lookup[T ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint](table []T) Func {
	return func(raw uint64) (uint64, error) {
		if raw >= uint64(len(table)) {
			return 0, IndexOutOfRange.New("value %d with table of length %d", raw, len(table))
		}
		return uint64(table[raw]), nil
	}
}

func lookupTable(table Table) Func {
	return func(raw uint64) (uint64, error) {
		if n := table.Len(); n < 0 || raw >= uint64(n) {
			return 0, IndexOutOfRange.New("value %d with table of length %d", raw, n)
		}
		return table.At(int(raw)), nil
	}
}

// wrapped annotates errors returned by caller supplied functions so that
// they carry a stack, while leaving the package's own classes alone.
func wrapped(err error) error {
	if InvalidArgument.Has(err) || IndexOutOfRange.Has(err) {
		return err
	}
	return errs.Wrap(err)
}

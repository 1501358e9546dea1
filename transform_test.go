package repack

import (
	"errors"
	"testing"

	"github.com/zeebo/assert"
)

type squares int

func (s squares) Len() int        { return int(s) }
func (s squares) At(i int) uint64 { return uint64(i * i) }

func TestResolve(t *testing.T) {
	apply := func(t *testing.T, spec interface{}, raw uint64) (uint64, error) {
		t.Helper()
		fn, err := Resolve(spec)
		assert.NoError(t, err)
		return fn(raw)
	}

	t.Run("Identity", func(t *testing.T) {
		for _, spec := range []interface{}{
			nil,
			Func(nil),
			(func(uint64) uint64)(nil),
			(func(uint64) (uint64, error))(nil),
		} {
			v, err := apply(t, spec, 1234)
			assert.NoError(t, err)
			assert.Equal(t, v, uint64(1234))
		}
	})

	t.Run("Functions", func(t *testing.T) {
		v, err := apply(t, func(x uint64) uint64 { return x * 2 }, 21)
		assert.NoError(t, err)
		assert.Equal(t, v, uint64(42))

		v, err = apply(t, func(x uint64) (uint64, error) { return x + 1, nil }, 41)
		assert.NoError(t, err)
		assert.Equal(t, v, uint64(42))

		boom := errors.New("boom")
		_, err = apply(t, Func(func(uint64) (uint64, error) { return 0, boom }), 0)
		assert.Equal(t, err, boom)
	})

	t.Run("Tables", func(t *testing.T) {
		for _, spec := range []interface{}{
			[]uint8{3, 2, 1},
			[]uint16{3, 2, 1},
			[]uint32{3, 2, 1},
			[]uint64{3, 2, 1},
			[]uint{3, 2, 1},
		} {
			v, err := apply(t, spec, 2)
			assert.NoError(t, err)
			assert.Equal(t, v, uint64(1))

			_, err = apply(t, spec, 3)
			assert.That(t, IndexOutOfRange.Has(err))

			_, err = apply(t, spec, 1<<63)
			assert.That(t, IndexOutOfRange.Has(err))
		}
	})

	t.Run("Table", func(t *testing.T) {
		v, err := apply(t, squares(10), 9)
		assert.NoError(t, err)
		assert.Equal(t, v, uint64(81))

		_, err = apply(t, squares(10), 10)
		assert.That(t, IndexOutOfRange.Has(err))
	})

	t.Run("Unsupported", func(t *testing.T) {
		for _, spec := range []interface{}{
			0, "x", []int8{1}, []int{1}, struct{}{}, func() {},
		} {
			_, err := Resolve(spec)
			assert.That(t, InvalidArgument.Has(err))
		}
	})

	t.Run("TableMatchesFunction", func(t *testing.T) {
		table := randomSlice[uint16](256)
		src := randomSlice[uint8](512)

		viaTable := make([]uint16, len(src))
		_, err := Map(src, viaTable, table)
		assert.NoError(t, err)

		viaFunc := make([]uint16, len(src))
		_, err = Map(src, viaFunc, func(x uint64) uint64 { return uint64(table[x]) })
		assert.NoError(t, err)

		assert.DeepEqual(t, viaTable, viaFunc)
	})
}

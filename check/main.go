package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"
	"unsafe"

	"github.com/zeebo/errs"
	"github.com/zeebo/mon"
	"github.com/zeebo/mon/monhandler"
	"github.com/zeebo/pcg"
	"github.com/zeebo/repack"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var (
	iterations = flag.Int("iterations", 1000, "number of random buffers to audit")
	bits       = flag.Int("bits", -11, "field width, negative for low bits first, 0 to map elements")
	srcWidth   = flag.Int("src", 8, "source element width in bits (8, 16, 32 or 64)")
	dstWidth   = flag.Int("dst", 16, "destination element width in bits (8, 16, 32 or 64)")
	workers    = flag.Int("workers", 0, "workers for the parallel audit, 0 for GOMAXPROCS")
	zeroFill   = flag.Bool("zerofill", false, "zero fill the destination past the end of the source")
	file       = flag.String("file", "", "print the fields of this file instead of auditing")
	debug      = flag.String("debug", "", "address to serve timings on")
	verbose    = flag.Bool("verbose", false, "log every call")

	rng pcg.T
)

func intn(n int) int { return int(rng.Uint32n(uint32(n))) }

func stats() {
	defer fmt.Println()

	tw := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	mon.Times(func(name string, state *mon.State) bool {
		sum, avg := state.Average()
		fmt.Fprintf(tw, "%s\t%v\t%v\t%v\n",
			name, state.Total(), time.Duration(sum), time.Duration(avg))
		return true
	})
}

func main() {
	flag.Parse()

	cfg := zap.NewDevelopmentConfig()
	if !*verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	repack.SetLogger(log)

	if *debug != "" {
		go func() { _ = http.ListenAndServe(*debug, monhandler.Handler{}) }()
	}

	if *file != "" {
		err = dump(*file)
	} else {
		defer stats()
		err = audit(context.Background(), log)
	}
	if err != nil {
		log.Fatal("check failed", zap.Error(err))
	}
}

func options() []repack.Option {
	var opts []repack.Option
	if *bits != 0 {
		opts = append(opts, repack.Bits(*bits))
	}
	if *zeroFill {
		opts = append(opts, repack.Exhaust(repack.ZeroFill))
	}
	return opts
}

// dump memory maps the file and prints every field of it, one per line.
func dump(path string) (err error) {
	defer mon.Start().Stop(&err)

	fh, err := os.Open(path)
	if err != nil {
		return errs.Wrap(err)
	}
	defer fh.Close()

	fi, err := fh.Stat()
	if err != nil {
		return errs.Wrap(err)
	}
	if fi.Size() == 0 {
		return nil
	}

	data, err := unix.Mmap(int(fh.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() { err = errs.Combine(err, errs.Wrap(unix.Munmap(data))) }()

	count := len(data)
	if *bits != 0 {
		n := *bits
		if n < 0 {
			n = -n
		}
		count = (len(data)*8 + n - 1) / n
	}

	fields := make([]uint64, count)
	count, err = repack.Map(data, fields, nil, options()...)
	if err != nil {
		return errs.Wrap(err)
	}

	out := bufio.NewWriter(os.Stdout)
	for _, f := range fields[:count] {
		out.WriteString(strconv.FormatUint(f, 10))
		out.WriteByte('\n')
	}
	return errs.Wrap(out.Flush())
}

type auditFunc func(ctx context.Context, log *zap.Logger) error

// audit runs Map and MapParallel over random buffers and checks every field
// against a bit at a time model.
func audit(ctx context.Context, log *zap.Logger) error {
	fn, err := pickSource(*srcWidth, *dstWidth)
	if err != nil {
		return err
	}
	log.Info("auditing",
		zap.Int("iterations", *iterations),
		zap.Int("bits", *bits),
		zap.Int("src", *srcWidth),
		zap.Int("dst", *dstWidth))
	return fn(ctx, log)
}

func pickSource(src, dst int) (auditFunc, error) {
	switch src {
	case 8:
		return pickDest[uint8](dst)
	case 16:
		return pickDest[uint16](dst)
	case 32:
		return pickDest[uint32](dst)
	case 64:
		return pickDest[uint64](dst)
	}
	return nil, errs.New("unsupported source width: %d", src)
}

func pickDest[S repack.Unsigned](dst int) (auditFunc, error) {
	switch dst {
	case 8:
		return auditWidths[S, uint8], nil
	case 16:
		return auditWidths[S, uint16], nil
	case 32:
		return auditWidths[S, uint32], nil
	case 64:
		return auditWidths[S, uint64], nil
	}
	return nil, errs.New("unsupported destination width: %d", dst)
}

func auditWidths[S, D repack.Unsigned](ctx context.Context, log *zap.Logger) error {
	var s S
	ws := int(unsafe.Sizeof(s)) * 8

	for i := 0; i < *iterations; i++ {
		if i > 0 && *iterations >= 10 && i%(*iterations/10) == 0 {
			log.Info("progress", zap.Float64("percent", 100*float64(i)/float64(*iterations)))
		}

		src := make([]S, intn(4096))
		for j := range src {
			src[j] = S(rng.Uint64())
		}
		dst := make([]D, intn(4096))
		par := make([]D, len(dst))

		n, err := repack.Map(src, dst, nil, options()...)
		if err != nil {
			return errs.Wrap(err)
		}
		pn, err := repack.MapParallel(ctx, src, par, nil, *workers, options()...)
		if err != nil {
			return errs.Wrap(err)
		}
		if n != pn {
			return errs.New("serial wrote %d fields, parallel wrote %d", n, pn)
		}

		for j := 0; j < n; j++ {
			exp := model(src, ws, *bits, j)
			if *bits == 0 {
				exp = uint64(D(exp))
			}
			if uint64(dst[j]) != exp || uint64(par[j]) != exp {
				return errs.New("field %d of %d: serial %d parallel %d expected %d",
					j, n, dst[j], par[j], exp)
			}
		}
	}

	return nil
}

// model returns the ith field by reading one bit at a time.
func model[S repack.Unsigned](src []S, ws, bits, i int) uint64 {
	if bits == 0 {
		return uint64(src[i])
	}

	msb, n := bits > 0, bits
	if !msb {
		n = -n
	}

	var out uint64
	for b := 0; b < n; b++ {
		pos := i*n + b
		var bit uint64
		if e := pos / ws; e < len(src) {
			shift := pos % ws
			if msb {
				shift = ws - 1 - shift
			}
			bit = uint64(src[e]) >> uint(shift) & 1
		}
		if msb {
			out = out<<1 | bit
		} else {
			out |= bit << uint(b)
		}
	}
	return out
}

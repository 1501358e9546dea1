package repack

// Policy controls what repacking does once the source bits run out before
// the destination is full.
type Policy uint8

const (
	// Truncate stops after the last complete field. A trailing partial
	// field is dropped and the rest of the destination is left untouched.
	Truncate Policy = iota

	// ZeroFill treats the source as followed by zero bits, so every
	// destination element is written.
	ZeroFill
)

func (p Policy) String() string {
	switch p {
	case Truncate:
		return "truncate"
	case ZeroFill:
		return "zerofill"
	default:
		return "unknown"
	}
}

// Option configures a call to Map or MapParallel.
type Option func(*config)

// Bits selects repacking mode with fields of |n| bits. A positive n reads
// the source most significant bit first, a negative n least significant bit
// first. Bits(0) is an InvalidArgument error.
func Bits(n int) Option {
	return func(c *config) { c.bits, c.repack = n, true }
}

// SourceBits makes each source element contribute only its low k bits to
// the repacked bit stream. It has no effect in element mapping mode.
func SourceBits(k int) Option {
	return func(c *config) { c.srcBits, c.srcSet = k, true }
}

// Exhaust sets the policy for when the source runs out of bits.
func Exhaust(p Policy) Option {
	return func(c *config) { c.policy = p }
}

type config struct {
	repack  bool
	bits    int
	srcBits int
	srcSet  bool
	policy  Policy
}

// plan is a validated config bound to concrete element widths.
type plan struct {
	repack bool
	msb    bool // most significant bit first
	n      uint // bits per field
	ws     uint // bits contributed per source element
	wd     uint // bits per destination element
	policy Policy
}

func newPlan(ws, wd uint, opts []Option) (p plan, err error) {
	var c config
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	p = plan{repack: c.repack, ws: ws, wd: wd, policy: c.policy}

	if c.policy != Truncate && c.policy != ZeroFill {
		return p, InvalidArgument.New("unknown exhaustion policy %d", c.policy)
	}
	if !c.repack {
		return p, nil
	}

	n := c.bits
	if n == 0 {
		return p, InvalidArgument.New("bits must be nonzero")
	}
	p.msb = n > 0
	if n < 0 {
		n = -n
	}
	if n > 64 {
		return p, InvalidArgument.New("bits must be at most 64: got %d", n)
	}
	if uint(n) > wd {
		return p, InvalidArgument.New("%d bit fields do not fit %d bit destination elements", n, wd)
	}
	p.n = uint(n)

	if c.srcSet {
		if c.srcBits < 1 || uint(c.srcBits) > ws {
			return p, InvalidArgument.New("source bits must be in [1, %d]: got %d", ws, c.srcBits)
		}
		p.ws = uint(c.srcBits)
	}

	return p, nil
}

// fields returns how many destination elements a pass writes given the
// source and destination lengths.
func (p plan) fields(srcLen, dstLen int) int {
	if !p.repack || p.policy == Truncate {
		avail := srcLen
		if p.repack {
			avail = int(uint64(srcLen) * uint64(p.ws) / uint64(p.n))
		}
		return min(avail, dstLen)
	}
	return dstLen
}

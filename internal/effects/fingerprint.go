package effects

// Fingerprint is the cache key derived from the joker line-up and the
// context fields the processor reads. Two calls with equal fingerprints are
// guaranteed to produce equal AccumulatedEffects, because every input that
// can influence a joker's behavior is hashed: joker identity and state
// version in evaluation order, the stage, every card the context exposes,
// and the numeric game facts.
type Fingerprint uint64

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// hasher is an inlined FNV-1a accumulator. hash/fnv only accepts byte
// slices, so the mix is written out here and a cache probe never allocates.
type hasher uint64

func newHasher() hasher { return fnvOffset64 }

func (h hasher) byte(b byte) hasher {
	return (h ^ hasher(b)) * fnvPrime64
}

func (h hasher) uint64(v uint64) hasher {
	for i := 0; i < 8; i++ {
		h = h.byte(byte(v))
		v >>= 8
	}
	return h
}

func (h hasher) int(v int) hasher {
	return h.uint64(uint64(int64(v)))
}

func (h hasher) str(s string) hasher {
	for i := 0; i < len(s); i++ {
		h = h.byte(s[i])
	}
	return h.byte(0) // terminator so "ab"+"c" != "a"+"bc"
}

// contextFingerprint hashes the read-only inputs of a context. Scratch
// fields are deliberately excluded: they are outputs.
func contextFingerprint(h hasher, ctx *ProcessContext) hasher {
	h = h.str(string(ctx.Stage))
	h = h.int(len(ctx.Played))
	for _, c := range ctx.Played {
		h = h.byte(c.Code())
	}
	h = h.int(len(ctx.Held))
	for _, c := range ctx.Held {
		h = h.byte(c.Code())
	}
	h = h.int(len(ctx.Discarded))
	for _, c := range ctx.Discarded {
		h = h.byte(c.Code())
	}
	if ctx.Scored != nil {
		h = h.byte(1).byte(ctx.Scored.Code())
		h = h.int(ctx.ScoredIndex)
	} else {
		h = h.byte(0)
	}
	h = h.int(ctx.Money)
	h = h.int(ctx.Ante)
	h = h.int(ctx.Round)
	h = h.int(ctx.HandsLeft)
	h = h.int(ctx.DiscardsLeft)
	return h
}

// FingerprintBuilder hashes a call's inputs incrementally. Value semantics:
// each method returns the advanced builder, so building never allocates.
type FingerprintBuilder struct {
	h hasher
}

// NewFingerprintBuilder starts an empty fingerprint.
func NewFingerprintBuilder() FingerprintBuilder {
	return FingerprintBuilder{h: newHasher()}
}

// Joker mixes in one joker's identity, kind and state version. Call in
// slot order.
func (b FingerprintBuilder) Joker(id, kind string, version uint64) FingerprintBuilder {
	b.h = b.h.str(id).str(kind).uint64(version)
	return b
}

// Context mixes in every read-only context field the processor exposes to
// jokers.
func (b FingerprintBuilder) Context(ctx *ProcessContext) FingerprintBuilder {
	b.h = contextFingerprint(b.h, ctx)
	return b
}

// Fingerprint returns the final key.
func (b FingerprintBuilder) Fingerprint() Fingerprint {
	return Fingerprint(b.h)
}

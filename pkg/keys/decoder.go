package keys

import "time"

const (
	// DefaultTimeout is the inter-byte idle timeout. It should be just
	// long enough for the remaining bytes of a multi-byte key to arrive.
	DefaultTimeout = 100 * time.Millisecond

	// pollInterval is how long the decoder naps between availability
	// checks while waiting out the idle timeout.
	pollInterval = time.Millisecond

	// cr and lf are line-ending artifacts some terminals append to a
	// keypress; they are discarded before matching.
	cr = 0x0D
	lf = 0x0A
)

// Source is the serial input the decoder polls for bytes.
// Available must not block; ReadByte is only called after Available
// reported a pending byte.
type Source interface {
	Available() bool
	ReadByte() (byte, error)
}

// Decoder consumes raw bytes from a Source and resolves them against a
// key table. It owns a bounded accumulator for the current decode
// attempt; the accumulator never survives across Decode calls.
type Decoder struct {
	src   Source
	table Table

	// injected for tests
	nowFn   func() time.Time
	sleepFn func(time.Duration)
}

// NewDecoder returns a decoder over src using the given table.
// The table is expected to be validated; overlapping duplicate
// sequences lead to undefined match results.
func NewDecoder(src Source, table Table) *Decoder {
	return &Decoder{
		src:     src,
		table:   table,
		nowFn:   time.Now,
		sleepFn: time.Sleep,
	}
}

// Decode polls the source for up to timeout of inter-byte idle time and
// returns the decoded key, or NoKey if nothing decodable arrived.
//
// The deadline resets on every received byte, so timeout bounds the
// silence between bytes rather than the total call duration. A
// complete match with no competing longer candidates returns
// immediately; a buffer no table entry can extend returns NoKey
// immediately. A match that is also a prefix of a longer key (bare
// Escape vs. an arrow sequence) is held until the idle deadline passes,
// then returned.
func (d *Decoder) Decode(timeout time.Duration) Key {
	var buf [MaxSeq]byte
	n := 0
	matched := NoKey

	deadline := d.nowFn().Add(timeout)
	for d.nowFn().Before(deadline) {
		if !d.src.Available() {
			d.sleepFn(pollInterval)
			continue
		}
		b, err := d.src.ReadByte()
		if err != nil {
			return NoKey
		}
		if b == cr || b == lf {
			continue
		}
		buf[n] = b
		deadline = d.nowFn().Add(timeout)

		// Rescan the whole table against the accumulator. Unused
		// trailing positions are zero on both sides, so a short key
		// matches by sentinel equality in its tail.
		matched = NoKey
		partial := 0
		for _, bind := range d.table {
			if bind.Seq[0] != buf[0] {
				continue
			}
			c := 0
			for c < MaxSeq && bind.Seq[c] == buf[c] {
				c++
			}
			if c == MaxSeq {
				matched = bind.Key
			} else {
				partial++
			}
		}

		// Unambiguous match and a quiet line: resolve right away so
		// single-byte keys don't wait out the timeout.
		if matched != NoKey && partial == 0 && !d.src.Available() {
			return matched
		}
		// Nothing matches and nothing could: more bytes can only make
		// it worse.
		if matched == NoKey && partial == 0 {
			return NoKey
		}
		// Accumulator full: whatever we have is the answer.
		if n == MaxSeq-1 {
			return matched
		}
		n++
	}

	// Idle deadline passed with a live match still pending (e.g. a bare
	// Escape that never grew into an arrow sequence).
	return matched
}

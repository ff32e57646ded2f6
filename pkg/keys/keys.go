// Package keys decodes single keystrokes from a raw serial byte stream.
//
// A terminal sends most keys as a single byte, but control keys like the
// arrows arrive as multi-byte escape sequences that start with the same
// byte as the Escape key itself (decimal 27). The decoder disambiguates
// the two using an inter-byte idle timeout and a table of known key
// sequences, with no lookahead on the stream.
package keys

import "fmt"

// Key identifies a decoded logical keypress.
type Key int

// NoKey is returned when nothing decodable arrived in time.
const NoKey Key = -1

// Logical keys of the default calibration bindings.
const (
	Key1 Key = iota
	Key2
	KeySpace
	KeyUp
	KeyDown
	KeyEscape
	KeyQ
	KeyJ
	KeyK
)

// MaxSeq is the maximum number of raw bytes a single key may occupy.
const MaxSeq = 3

// Binding maps one raw byte sequence to a logical key. Unused trailing
// positions hold the zero sentinel, which must never appear as a payload
// byte at that position.
type Binding struct {
	Seq [MaxSeq]byte
	Key Key
}

// Table is an ordered, fixed set of bindings. It must not be modified
// after construction.
type Table []Binding

// DefaultTable returns the key bindings used by the calibration session.
func DefaultTable() Table {
	return Table{
		{Seq: [MaxSeq]byte{'1'}, Key: Key1},
		{Seq: [MaxSeq]byte{'2'}, Key: Key2},
		{Seq: [MaxSeq]byte{' '}, Key: KeySpace},
		{Seq: [MaxSeq]byte{27, 91, 65}, Key: KeyUp},   // ESC [ A
		{Seq: [MaxSeq]byte{27, 91, 66}, Key: KeyDown}, // ESC [ B
		{Seq: [MaxSeq]byte{27}, Key: KeyEscape},
		{Seq: [MaxSeq]byte{'q'}, Key: KeyQ},
		{Seq: [MaxSeq]byte{'j'}, Key: KeyJ},
		{Seq: [MaxSeq]byte{'k'}, Key: KeyK},
	}
}

// Validate reports a configuration error if two bindings share the exact
// same byte sequence. Duplicate sequences make the decode result depend
// on table order, which is a static defect rather than a runtime
// condition, so callers should validate once at construction.
func (t Table) Validate() error {
	seen := make(map[[MaxSeq]byte]Key, len(t))
	for _, b := range t {
		if prev, ok := seen[b.Seq]; ok {
			return fmt.Errorf("duplicate key sequence %v bound to both %d and %d", b.Seq, prev, b.Key)
		}
		seen[b.Seq] = b.Key
	}
	return nil
}

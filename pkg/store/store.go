// Package store persists the calibrated bandgap reference as a small
// fixed-size record, either in a host file or in an EEPROM-style byte
// image. A record is considered valid solely by its label tag; there is
// no checksum.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// LabelTag is the format/version tag of a valid calibration record.
const LabelTag = "bgID"

// RecordSize is the encoded size of a Record: 4 label bytes plus a
// little-endian uint16 millivolt value.
const RecordSize = 6

// ErrNoRecord means no valid calibration record is present: the label
// did not match, the data was short, or the backing storage is empty.
var ErrNoRecord = errors.New("no valid calibration record")

// Record is the persisted form of the bandgap reference.
type Record struct {
	Label [4]byte
	RefMv uint16
}

// NewRecord returns a record carrying mv under the current label tag.
func NewRecord(mv uint16) Record {
	var r Record
	copy(r.Label[:], LabelTag)
	r.RefMv = mv
	return r
}

// Valid reports whether the record carries the expected label tag.
func (r Record) Valid() bool {
	return string(r.Label[:]) == LabelTag
}

// MarshalBinary encodes the record into its fixed RecordSize layout.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	copy(buf, r.Label[:])
	binary.LittleEndian.PutUint16(buf[4:], r.RefMv)
	return buf, nil
}

// UnmarshalBinary decodes data and verifies the label tag. A short
// buffer or a label mismatch yields ErrNoRecord.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) < RecordSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrNoRecord, len(data), RecordSize)
	}
	var rec Record
	copy(rec.Label[:], data[:4])
	rec.RefMv = binary.LittleEndian.Uint16(data[4:6])
	if !rec.Valid() {
		return fmt.Errorf("%w: label %q", ErrNoRecord, rec.Label[:])
	}
	*r = rec
	return nil
}

// Store is a synchronous, single-shot record store.
type Store interface {
	Load() (Record, error)
	Save(Record) error
}

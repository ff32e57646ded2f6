package store

// MemStore keeps the record in a RecordSize byte image, the way the
// firmware keeps it at a fixed EEPROM offset. The zero value holds no
// valid record.
type MemStore struct {
	image [RecordSize]byte
}

var _ Store = (*MemStore)(nil)

// Load decodes the in-memory image. Returns ErrNoRecord if the image
// does not carry a valid label.
func (m *MemStore) Load() (Record, error) {
	var rec Record
	if err := rec.UnmarshalBinary(m.image[:]); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Save encodes rec into the in-memory image.
func (m *MemStore) Save(rec Record) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	copy(m.image[:], data)
	return nil
}

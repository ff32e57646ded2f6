package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mv   uint16
	}{
		{"zero", 0},
		{"nominal", 1100},
		{"low end", 1000},
		{"high end", 1200},
		{"max", 65535},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(tt.mv)
			data, err := rec.MarshalBinary()
			require.NoError(t, err)
			assert.Len(t, data, RecordSize)

			var got Record
			require.NoError(t, got.UnmarshalBinary(data))
			assert.Equal(t, tt.mv, got.RefMv)
			assert.True(t, got.Valid())
		})
	}
}

func TestRecord_Unmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{'b', 'g'}},
		{"wrong label", []byte{'x', 'x', 'x', 'x', 0x4C, 0x04}},
		{"zeroed image", make([]byte, RecordSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			err := rec.UnmarshalBinary(tt.data)
			assert.ErrorIs(t, err, ErrNoRecord)
		})
	}
}

func TestMemStore_EmptyImage(t *testing.T) {
	var m MemStore
	_, err := m.Load()
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestMemStore_RoundTrip(t *testing.T) {
	var m MemStore
	require.NoError(t, m.Save(NewRecord(1123)))

	rec, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, uint16(1123), rec.RefMv)

	// Repeated loads with no intervening save yield the same value.
	again, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, rec, again)
}

func TestFileStore_MissingFile(t *testing.T) {
	f := NewFileStore(filepath.Join(t.TempDir(), "bandgap.cal"))
	_, err := f.Load()
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandgap.cal")
	f := NewFileStore(path)

	require.NoError(t, f.Save(NewRecord(1087)))

	rec, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, uint16(1087), rec.RefMv)

	// The file is exactly one record.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, RecordSize)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandgap.cal")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	f := NewFileStore(path)
	_, err := f.Load()
	assert.ErrorIs(t, err, ErrNoRecord)
}

package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Valid(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())
	assert.Len(t, table, 9)
}

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr bool
	}{
		{
			name: "distinct sequences",
			table: Table{
				{Seq: [MaxSeq]byte{'a'}, Key: Key(0)},
				{Seq: [MaxSeq]byte{'b'}, Key: Key(1)},
			},
			wantErr: false,
		},
		{
			name: "shared prefix is fine",
			table: Table{
				{Seq: [MaxSeq]byte{27}, Key: Key(0)},
				{Seq: [MaxSeq]byte{27, 91, 65}, Key: Key(1)},
			},
			wantErr: false,
		},
		{
			name: "duplicate sequence",
			table: Table{
				{Seq: [MaxSeq]byte{27, 91, 65}, Key: Key(0)},
				{Seq: [MaxSeq]byte{27, 91, 65}, Key: Key(1)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

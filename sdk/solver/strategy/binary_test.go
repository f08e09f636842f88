package strategy

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRoundTrip(t *testing.T) {
	p := sampleProfile()

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, p))
	assert.Equal(t, []byte("STRAT"), buf.Bytes()[:5])

	got, err := ReadBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, p.Entries(), got.Entries())
}

func TestReadBinaryRejectsBadHeader(t *testing.T) {
	_, err := ReadBinary(bytes.NewReader([]byte("NOPE!\x01\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = ReadBinary(bytes.NewReader([]byte("ST")))
	assert.ErrorIs(t, err, ErrBadMagic)

	var buf bytes.Buffer
	buf.WriteString("STRAT")
	binary.Write(&buf, binary.LittleEndian, uint32(9))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	_, err = ReadBinary(&buf)
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestReadBinaryTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, sampleProfile()))
	data := buf.Bytes()

	_, err := ReadBinary(bytes.NewReader(data[:len(data)-3]))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSaveLoadBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.bin")
	p := sampleProfile()
	require.NoError(t, SaveBinary(path, p))

	got, err := LoadBinary(path)
	require.NoError(t, err)
	assert.Equal(t, p.Len(), got.Len())
	assert.Equal(t, p.Entries(), got.Entries())
}

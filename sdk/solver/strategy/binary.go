package strategy

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/lox/aofsolver/internal/fileutil"
)

const (
	binaryMagic   = "STRAT"
	binaryVersion = uint32(1)

	// Sanity limits applied while reading untrusted files.
	maxKeyLen  = 1 << 16
	maxActions = 1 << 10
)

var (
	ErrBadMagic   = errors.New("not a binary strategy file")
	ErrBadVersion = errors.New("unsupported binary strategy version")
)

// WriteBinary encodes p as the magic tag, a version, an entry count and then
// for each entry its key, visit count and probabilities. Integers and floats
// are little endian. Entries are written in key order.
func WriteBinary(w io.Writer, p *Profile) error {
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian
	var scratch [8]byte

	put32 := func(v uint32) {
		le.PutUint32(scratch[:4], v)
		bw.Write(scratch[:4])
	}
	put64 := func(v uint64) {
		le.PutUint64(scratch[:], v)
		bw.Write(scratch[:])
	}

	bw.WriteString(binaryMagic)
	put32(binaryVersion)
	put32(uint32(p.Len()))
	for _, e := range p.Entries() {
		put32(uint32(len(e.Key)))
		bw.WriteString(e.Key)
		put64(uint64(e.Visits))
		put32(uint32(len(e.Probabilities)))
		for _, prob := range e.Probabilities {
			put64(math.Float64bits(prob))
		}
	}
	return bw.Flush()
}

// ReadBinary decodes a file written by WriteBinary.
func ReadBinary(r io.Reader) (*Profile, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	magic := make([]byte, len(binaryMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if string(magic) != binaryMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, magic)
	}

	var version, count uint32
	if err := binary.Read(br, le, &version); err != nil {
		return nil, fmt.Errorf("%w: read version: %v", ErrMalformed, err)
	}
	if version != binaryVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	if err := binary.Read(br, le, &count); err != nil {
		return nil, fmt.Errorf("%w: read count: %v", ErrMalformed, err)
	}

	p := NewProfile(0)
	for i := uint32(0); i < count; i++ {
		var keyLen uint32
		if err := binary.Read(br, le, &keyLen); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		if keyLen == 0 || keyLen > maxKeyLen {
			return nil, fmt.Errorf("%w: entry %d: key length %d", ErrMalformed, i, keyLen)
		}
		key := make([]byte, keyLen)
		if _, err := io.ReadFull(br, key); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}

		var visits uint64
		var n uint32
		if err := binary.Read(br, le, &visits); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		if err := binary.Read(br, le, &n); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		if n == 0 || n > maxActions {
			return nil, fmt.Errorf("%w: entry %d: %d actions", ErrMalformed, i, n)
		}
		probs := make([]float64, n)
		if err := binary.Read(br, le, probs); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		p.Set(string(key), int64(visits), probs)
	}
	return p, nil
}

// SaveBinary writes p to path atomically.
func SaveBinary(path string, p *Profile) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteBinary(w, p)
	})
}

// LoadBinary reads a binary strategy file.
func LoadBinary(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBinary(f)
}

// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package hash

import (
	"encoding/binary"
	"fmt"

	"github.com/featurebasedb/seerprep/table"
	"github.com/zeebo/blake3"
)

// Fingerprinter accumulates a blake3 hash over named int32 columns. Two
// data sets with the same columns, in the same order, holding the same
// values in the same row order, have the same fingerprint.
type Fingerprinter struct {
	hasher *blake3.Hasher
	buf    []byte
}

// NewFingerprinter returns an empty Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{
		hasher: blake3.New(),
		buf:    make([]byte, 0, 4096),
	}
}

// WriteColumn adds a column. The name is length-prefixed so that column
// boundaries can't be shifted between name and values.
func (f *Fingerprinter) WriteColumn(name string, values []int32) {
	f.buf = binary.LittleEndian.AppendUint32(f.buf[:0], uint32(len(name)))
	f.buf = append(f.buf, name...)
	f.buf = binary.LittleEndian.AppendUint32(f.buf, uint32(len(values)))
	for _, v := range values {
		if len(f.buf)+4 > cap(f.buf) {
			f.flush()
		}
		f.buf = binary.LittleEndian.AppendUint32(f.buf, uint32(v))
	}
	f.flush()
}

// WriteTable adds every column of t in order.
func (f *Fingerprinter) WriteTable(t *table.Table) {
	for _, name := range t.Names() {
		f.WriteColumn(name, t.MustColumn(name))
	}
}

func (f *Fingerprinter) flush() {
	// "Write implements part of the hash.Hash interface. It never returns an error."
	//  -- https://godoc.org/github.com/zeebo/blake3#Hasher.Write
	_, _ = f.hasher.Write(f.buf)
	f.buf = f.buf[:0]
}

// Sum16 returns the first 16 bytes of the digest as hex.
func (f *Fingerprinter) Sum16() string {
	var buf [16]byte
	_, _ = f.hasher.Digest().Read(buf[:])
	return fmt.Sprintf("%x", buf)
}

// Blake3sum16 returns a 16 byte hash of input as a hexidecimal string.
func Blake3sum16(input []byte) string {
	hasher := blake3.New()

	_, _ = hasher.Write(input)
	var buf [16]byte
	_, _ = hasher.Digest().Read(buf[0:])

	return fmt.Sprintf("%x", buf)
}

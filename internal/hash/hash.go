// Package hash computes the engine's two 64-bit fingerprints: the
// partition/key discriminator stored in the entries table's hash column,
// and the anti-tamper prefix stamped on every stored payload.
//
// Both are built on xxhash, the mixing hash already present in the
// teacher's own dependency closure (pulled in transitively through Dolt's
// storage layer) rather than a hand-rolled FNV variant.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// PrefixSize is the width, in bytes, of the anti-tamper prefix written
// before every serialized payload.
const PrefixSize = 8

// EntryHash returns the deterministic fingerprint of (partition, key) used
// as the primary index discriminator. Any change to
// either string changes the hash.
func EntryHash(partition, key string) uint64 {
	d := xxhash.New()
	writeLenPrefixed(d, partition)
	writeLenPrefixed(d, key)
	return d.Sum64()
}

// AntiTamper computes the 64-bit fingerprint over (partition, key,
// utc_creation) stamped as the anti-tamper prefix on the stored payload
//. utcCreationUnix is the creation instant in
// whole seconds since the Unix epoch.
func AntiTamper(partition, key string, utcCreationUnix int64) uint64 {
	d := xxhash.New()
	writeLenPrefixed(d, partition)
	writeLenPrefixed(d, key)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(utcCreationUnix))
	_, _ = d.Write(ts[:])
	return d.Sum64()
}

// writeLenPrefixed hashes s preceded by its byte length so that
// ("ab","c") and ("a","bc") never collide on the concatenation boundary.
func writeLenPrefixed(d *xxhash.Digest, s string) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
	_, _ = d.Write(lenBuf[:])
	_, _ = d.Write([]byte(s))
}

// PutPrefix writes the big-endian 8-byte encoding of h into buf[:8].
func PutPrefix(buf []byte, h uint64) {
	binary.BigEndian.PutUint64(buf, h)
}

// ReadPrefix reads the big-endian 8-byte anti-tamper prefix from buf[:8].
func ReadPrefix(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}

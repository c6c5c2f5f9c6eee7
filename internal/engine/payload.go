package engine

import (
	"bytes"
	"io"

	"github.com/kvlite/kvlite/internal/hash"
)

// buildPayload implements the write path's serialize step: write the 8-byte anti-tamper prefix, serialize v after it,
// then compress the whole block if it exceeds the configured threshold.
func (e *Engine) buildPayload(v any, partition, key string, utcCreation int64) (payload []byte, compressed bool, err error) {
	lease := e.bufpool.Acquire()
	defer lease.Release()

	buf := lease.Buf
	var prefix [hash.PrefixSize]byte
	hash.PutPrefix(prefix[:], hash.AntiTamper(partition, key, utcCreation))
	buf.Write(prefix[:])

	// A nil value is permitted and stored as a zero-length
	// payload after the anti-tamper prefix, rather than the codec's own
	// null representation.
	if v != nil {
		if err := e.codec.Serialize(buf, v); err != nil {
			return nil, false, err
		}
	}

	if buf.Len() <= e.settings.MinLengthForCompression {
		out := make([]byte, buf.Len())
		copy(out, buf.Bytes())
		return out, false, nil
	}

	var compressedBuf bytes.Buffer
	w, err := e.compressor.NewWriter(&compressedBuf)
	if err != nil {
		return nil, false, err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		w.Close()
		return nil, false, err
	}
	if err := w.Close(); err != nil {
		return nil, false, err
	}
	return compressedBuf.Bytes(), true, nil
}

// decodePayload implements the deserialization step:
// decompress if needed, verify the anti-tamper prefix, then deserialize
// the remaining bytes into out.
func (e *Engine) decodePayload(raw []byte, compressedFlag bool, partition, key string, utcCreation int64, out any) error {
	data := raw
	if compressedFlag {
		r, err := e.compressor.NewReader(bytes.NewReader(raw))
		if err != nil {
			return err
		}
		defer r.Close()
		decoded, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		data = decoded
	}

	if len(data) < hash.PrefixSize {
		return newErr(KindDataTamper, "decode", nil)
	}
	got := hash.ReadPrefix(data[:hash.PrefixSize])
	want := hash.AntiTamper(partition, key, utcCreation)
	if got != want {
		return newErr(KindDataTamper, "decode", nil)
	}

	body := data[hash.PrefixSize:]
	if len(body) == 0 {
		return nil
	}
	return e.codec.Deserialize(bytes.NewReader(body), out)
}

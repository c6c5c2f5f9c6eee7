package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"reflect"
)

// BinaryCodec is the richer Codec:
// encoding/gob under the hood, which embeds type metadata on the wire so a
// decode can detect a type mismatch at the point of Deserialize rather than
// silently truncating.
type BinaryCodec struct {
	opts Options
}

// NewBinary returns a Binary codec configured with opts.
func NewBinary(opts Options) *BinaryCodec {
	return &BinaryCodec{opts: opts}
}

func (c *BinaryCodec) Serialize(w io.Writer, v any) error {
	if c.opts.SurrogateSelector != nil {
		v = c.opts.SurrogateSelector(v)
	}
	return gob.NewEncoder(w).Encode(v)
}

func (c *BinaryCodec) Deserialize(r io.Reader, out any) error {
	if c.opts.Binder != nil {
		name := reflect.TypeOf(out).String()
		if !c.opts.Binder(name) {
			return fmt.Errorf("codec: type %q rejected by binder", name)
		}
	}
	return gob.NewDecoder(r).Decode(out)
}

// CanSerialize reports whether gob can encode a value of v's type. gob
// requires concrete, exported-field types; this performs a throwaway
// encode to answer precisely rather than guessing from the type alone.
func (c *BinaryCodec) CanSerialize(v any) bool {
	if v == nil {
		return true
	}
	var buf bytes.Buffer
	return gob.NewEncoder(&buf).Encode(v) == nil
}

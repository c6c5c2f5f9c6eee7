package codec

import (
	"encoding/json"
	"io"
)

// StructuralCodec is the default Codec: encoding/json under the hood,
// accepting any value json.Marshal accepts.
type StructuralCodec struct{}

// NewStructural returns the default structural codec.
func NewStructural() *StructuralCodec {
	return &StructuralCodec{}
}

func (StructuralCodec) Serialize(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (StructuralCodec) Deserialize(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

// CanSerialize reports whether v marshals cleanly under encoding/json.
// Channels, plain funcs, and complex numbers are the notable rejects.
func (StructuralCodec) CanSerialize(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case chan any, func():
		return false
	}
	_, err := json.Marshal(v)
	return err == nil
}

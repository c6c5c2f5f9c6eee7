// Package compress implements the engine's compressor contract: a
// streaming wrap of an output stream that compresses, and of an input
// stream that decompresses.
//
// The underlying codec is klauspost/compress's gzip-compatible
// implementation, a drop-in faster replacement for compress/gzip.
package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Compressor streams compression and decompression. Implementations must
// be safe for concurrent use across independent streams.
type Compressor interface {
	// NewWriter wraps w so that bytes written to the returned
	// WriteCloser are compressed into w. Callers must Close the
	// returned writer to flush the trailer before consuming w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader wraps r so that bytes read from the returned ReadCloser
	// are decompressed from r.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Gzip is the default Compressor.
type Gzip struct {
	// Level is the gzip compression level; zero uses
	// gzip.DefaultCompression.
	Level int
}

// New returns a Gzip compressor at the default compression level.
func New() *Gzip {
	return &Gzip{Level: gzip.DefaultCompression}
}

func (g *Gzip) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := g.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, level)
}

func (g *Gzip) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Package formats implements the two binary asset containers produced
// by the exporter: the mesh asset and the skeleton+animation asset.
// All multi-byte values are little-endian with no padding.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTextDecode is returned when decoding from a text-mode stream is
// attempted. The text encoding is a debugging aid, not an interchange
// format.
var ErrTextDecode = errors.New("formats: text encoding cannot be decoded")

// Writer encodes fixed-width primitives. The zero Mode writes binary;
// NewTextWriter produces a whitespace-separated decimal dump instead,
// which is human-readable but not bit-exact.
//
// Errors are sticky: after the first write failure all further writes
// are no-ops and Err reports the failure.
type Writer struct {
	w    io.Writer
	text bool
	err  error
}

// NewWriter returns a binary Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewTextWriter returns a Writer producing the debug text encoding.
func NewTextWriter(w io.Writer) *Writer {
	return &Writer{w: w, text: true}
}

// Text reports whether the writer is in the debug text mode.
func (w *Writer) Text() bool {
	return w.text
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) put(v any) {
	if w.err != nil {
		return
	}
	if w.text {
		_, w.err = fmt.Fprintf(w.w, "%v ", v)
		return
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
}

// Uint8 writes an unsigned 8-bit integer.
func (w *Writer) Uint8(v uint8) { w.put(v) }

// Uint16 writes an unsigned 16-bit integer.
func (w *Writer) Uint16(v uint16) { w.put(v) }

// Uint32 writes an unsigned 32-bit integer.
func (w *Writer) Uint32(v uint32) { w.put(v) }

// Float32 writes a 32-bit IEEE float.
func (w *Writer) Float32(v float32) { w.put(v) }

// Bool writes a single byte, 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if w.text {
		w.put(v)
		return
	}
	var b uint8
	if v {
		b = 1
	}
	w.put(b)
}

// String writes the raw bytes of s with no terminator and no length
// prefix. Length-prefixing is the caller's concern.
func (w *Writer) String(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// Reader decodes the binary encoding written by Writer. Errors are
// sticky; after the first failure all reads return zero values.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader returns a Reader over a binary-encoded stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) get(v any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.LittleEndian, v)
}

// Uint8 reads an unsigned 8-bit integer.
func (r *Reader) Uint8() uint8 {
	var v uint8
	r.get(&v)
	return v
}

// Uint16 reads an unsigned 16-bit integer.
func (r *Reader) Uint16() uint16 {
	var v uint16
	r.get(&v)
	return v
}

// Uint32 reads an unsigned 32-bit integer.
func (r *Reader) Uint32() uint32 {
	var v uint32
	r.get(&v)
	return v
}

// Float32 reads a 32-bit IEEE float.
func (r *Reader) Float32() float32 {
	var v float32
	r.get(&v)
	return v
}

// Bool reads a 1-byte boolean.
func (r *Reader) Bool() bool {
	return r.Uint8() != 0
}

// String reads exactly n raw bytes as text.
func (r *Reader) String(n int) string {
	if r.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return ""
	}
	return string(buf)
}

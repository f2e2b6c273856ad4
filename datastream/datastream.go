// Package datastream implements the binary serialization DCOP uses for call
// arguments and replies: the Qt data stream layout, big-endian, with no
// per-value type tags. A reader needs the signature to walk a buffer, which
// is exactly what a DCOP receiver has.
//
// Layouts:
//
//	QString  uint32 byte length, then UTF-16BE code units
//	         (0xFFFFFFFF marks a null string)
//	QCString uint32 length including the trailing NUL, then bytes and NUL
//	bool     1 byte, 0 or 1
//	int      int32
//	float    IEEE-754 binary32
//	double   IEEE-754 binary64
package datastream

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/juju/errors"
	"golang.org/x/text/encoding/unicode"
)

const nullLength = 0xFFFFFFFF

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// Writer appends values to an in-memory buffer. Writes never fail except for
// strings that are not valid UTF-8 and so have no UTF-16 form.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteString(s string) error {
	if !utf8.ValidString(s) {
		return errors.NotValidf("string %q with invalid UTF-8", s)
	}
	encoded, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return errors.Annotate(err, "failed to encode string as UTF-16")
	}
	w.writeUint32(uint32(len(encoded)))
	w.buf.Write(encoded)
	return nil
}

// WriteNullString writes the null QString marker.
func (w *Writer) WriteNullString() {
	w.writeUint32(nullLength)
}

// WriteCString writes a NUL terminated byte string, as used for DCOP
// application, object and function names.
func (w *Writer) WriteCString(s string) {
	w.writeUint32(uint32(len(s) + 1))
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteBytes writes a length-prefixed byte array.
func (w *Writer) WriteBytes(b []byte) {
	w.writeUint32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *Writer) WriteInt32(v int32) {
	w.writeUint32(uint32(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.writeUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

func (w *Writer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Bytes returns the encoded buffer. The slice aliases the writer's storage.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reader consumes values in the order they were written.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining reports how many bytes have not been consumed yet.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) next(n int, what string) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, errors.NotValidf("truncated %s at offset %d", what, r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) readUint32(what string) (uint32, error) {
	b, err := r.next(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadString returns the next QString. A null string reads as "".
func (r *Reader) ReadString() (string, error) {
	n, err := r.readUint32("string length")
	if err != nil {
		return "", err
	}
	if n == nullLength {
		return "", nil
	}
	if n%2 != 0 {
		return "", errors.NotValidf("odd UTF-16 byte length %d", n)
	}
	b, err := r.next(int(n), "string")
	if err != nil {
		return "", err
	}
	decoded, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Annotate(err, "failed to decode UTF-16 string")
	}
	return string(decoded), nil
}

func (r *Reader) ReadCString() (string, error) {
	n, err := r.readUint32("cstring length")
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b, err := r.next(int(n), "cstring")
	if err != nil {
		return "", err
	}
	if b[len(b)-1] != 0 {
		return "", errors.NotValidf("cstring without terminating NUL")
	}
	return string(b[:len(b)-1]), nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.readUint32("byte array length")
	if err != nil {
		return nil, err
	}
	b, err := r.next(int(n), "byte array")
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.next(1, "bool")
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.readUint32("int")
	return int32(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.readUint32("float")
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.next(8, "double")
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

package dat

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// reader reads little-endian values from an in-memory Tibia.dat. Running out
// of data while a value is required yields ErrTruncated.
type reader struct {
	*bytes.Reader
}

func newReader(buf []byte) *reader {
	return &reader{bytes.NewReader(buf)}
}

func (r *reader) read(data interface{}) error {
	if err := binary.Read(r.Reader, binary.LittleEndian, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrapf(ErrTruncated, "at offset %d", r.offset())
		}
		return err
	}
	return nil
}

func (r *reader) offset() int64 {
	return r.Size() - int64(r.Len())
}

func (r *reader) u8() (uint8, error) {
	var v uint8
	err := r.read(&v)
	return v, err
}

func (r *reader) i8() (int8, error) {
	var v int8
	err := r.read(&v)
	return v, err
}

func (r *reader) u16() (uint16, error) {
	var v uint16
	err := r.read(&v)
	return v, err
}

func (r *reader) u32() (uint32, error) {
	var v uint32
	err := r.read(&v)
	return v, err
}

func (r *reader) i32() (int32, error) {
	var v int32
	err := r.read(&v)
	return v, err
}

// str reads a string prefixed by its 16-bit length.
func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	if int(n) > r.Len() {
		return "", errors.Wrapf(ErrTruncated, "string of %d bytes at offset %d", n, r.offset())
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.Reader, buf); err != nil {
		return "", errors.Wrap(ErrTruncated, err.Error())
	}
	return string(buf), nil
}

package dat

import (
	"bytes"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// message is a cursor over one wire-format message. Appearances files are
// protobuf encoded, but only a handful of message types are needed, so they
// are walked field by field instead of going through generated code.
type message struct {
	buf []byte
}

func (m *message) done() bool {
	return len(m.buf) == 0
}

// tag reads the next field number and wire type.
func (m *message) tag() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(m.buf)
	if n < 0 {
		return 0, 0, errors.Wrap(ErrInvalidTag, protowire.ParseError(n).Error())
	}
	m.buf = m.buf[n:]
	return num, typ, nil
}

// varint reads the value of a field that must be varint encoded.
func (m *message) varint(typ protowire.Type) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, errors.Wrapf(ErrInvalidTag, "want varint, got wire type %d", typ)
	}
	v, n := protowire.ConsumeVarint(m.buf)
	if n < 0 {
		return 0, errors.Wrap(ErrInvalidTag, protowire.ParseError(n).Error())
	}
	m.buf = m.buf[n:]
	return v, nil
}

// bytes reads the payload of a length-delimited field.
func (m *message) bytes(typ protowire.Type) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, errors.Wrapf(ErrInvalidTag, "want length-delimited, got wire type %d", typ)
	}
	v, n := protowire.ConsumeBytes(m.buf)
	if n < 0 {
		return nil, errors.Wrap(ErrInvalidTag, protowire.ParseError(n).Error())
	}
	m.buf = m.buf[n:]
	return v, nil
}

// sub reads a nested message.
func (m *message) sub(typ protowire.Type) (message, error) {
	b, err := m.bytes(typ)
	return message{buf: b}, err
}

func (m *message) str(typ protowire.Type) (string, error) {
	b, err := m.bytes(typ)
	return string(b), err
}

// presence reads an optional boolean. A varint sets it when non-zero; a
// length-delimited value (an empty or scalar sub-message) sets it by being
// there at all.
func (m *message) presence(typ protowire.Type) (bool, error) {
	switch typ {
	case protowire.VarintType:
		v, err := m.varint(typ)
		return v != 0, err
	case protowire.BytesType:
		_, err := m.bytes(typ)
		return err == nil, err
	}
	return false, errors.Wrapf(ErrInvalidTag, "want bool, got wire type %d", typ)
}

// repeatedVarint reads one occurrence of a repeated scalar field, whose tag
// was already consumed. Values may be tagged one by one or packed into a
// single length-delimited block. In the former case, following values are
// consumed for as long as the next tag repeats this field.
func (m *message) repeatedVarint(num protowire.Number, typ protowire.Type, emit func(uint64) error) error {
	switch typ {
	case protowire.VarintType:
		tag := protowire.AppendTag(nil, num, protowire.VarintType)
		for {
			v, err := m.varint(typ)
			if err != nil {
				return err
			}
			if err := emit(v); err != nil {
				return err
			}
			if !bytes.HasPrefix(m.buf, tag) {
				return nil
			}
			m.buf = m.buf[len(tag):]
		}
	case protowire.BytesType:
		packed, err := m.bytes(typ)
		if err != nil {
			return err
		}
		for len(packed) > 0 {
			v, n := protowire.ConsumeVarint(packed)
			if n < 0 {
				return errors.Wrap(ErrInvalidTag, protowire.ParseError(n).Error())
			}
			packed = packed[n:]
			if err := emit(v); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidTag, "want varint or packed, got wire type %d", typ)
}

// repeatedMessage reads one occurrence of a repeated message field, then
// keeps consuming while the next tag repeats this field.
func (m *message) repeatedMessage(num protowire.Number, typ protowire.Type, emit func(message) error) error {
	tag := protowire.AppendTag(nil, num, protowire.BytesType)
	for {
		sub, err := m.sub(typ)
		if err != nil {
			return err
		}
		if err := emit(sub); err != nil {
			return err
		}
		if !bytes.HasPrefix(m.buf, tag) {
			return nil
		}
		m.buf = m.buf[len(tag):]
	}
}

// scalarFields maps field numbers of a small message holding only varints to
// what to do with each value.
type scalarFields map[protowire.Number]func(t *Thing, v uint64)

// decodeScalars walks a message whose fields are all varints. Decoding stops
// at the first field not in fields.
func decodeScalars(t *Thing, m message, fields scalarFields, what string) {
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, what, err)
			return
		}
		set, ok := fields[num]
		if !ok {
			stopMessage(t, what, unknownField(num, typ))
			return
		}
		v, err := m.varint(typ)
		if err != nil {
			stopMessage(t, what, err)
			return
		}
		set(t, v)
	}
}

func unknownField(num protowire.Number, typ protowire.Type) error {
	return errors.Errorf("unknown field %d (wire type %d)", num, typ)
}

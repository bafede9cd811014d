// Binary property list reader for folder records.
//
// The reader is the counterpart of the writer in bplist_write.go but accepts
// any structurally valid binary plist, since record bytes may have been
// written by the host environment rather than by this tool. It never panics
// on corrupt input: every offset and reference is bounds-checked and failures
// surface as ordinary errors for the caller to absorb.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf16"
)

// maxParseDepth bounds object nesting so that reference cycles in corrupt
// input terminate instead of recursing forever.
const maxParseDepth = 32

var errTruncated = errors.New("truncated binary plist")

// unmarshalDict parses data as a binary plist whose top-level object is a
// dictionary and returns it with string keys and Go-typed values.
func unmarshalDict(data []byte) (map[string]any, error) {
	p, err := newParser(data)
	if err != nil {
		return nil, err
	}
	top, err := p.object(p.topObject, 0)
	if err != nil {
		return nil, err
	}
	d, ok := top.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level object is %T, not a dictionary", top)
	}
	return d, nil
}

type parser struct {
	data       []byte
	offSize    int
	refSize    int
	numObjects uint64
	topObject  uint64
	tableStart uint64
}

func newParser(data []byte) (*parser, error) {
	if len(data) < len(bplistHeader)+32 {
		return nil, errTruncated
	}
	if string(data[:7]) != "bplist0" {
		return nil, errors.New("not a binary plist")
	}

	trailer := data[len(data)-32:]
	p := &parser{
		data:       data,
		offSize:    int(trailer[6]),
		refSize:    int(trailer[7]),
		numObjects: binary.BigEndian.Uint64(trailer[8:]),
		topObject:  binary.BigEndian.Uint64(trailer[16:]),
		tableStart: binary.BigEndian.Uint64(trailer[24:]),
	}

	if p.offSize < 1 || p.offSize > 8 || p.refSize < 1 || p.refSize > 8 {
		return nil, errors.New("invalid binary plist trailer")
	}
	if p.numObjects == 0 || p.topObject >= p.numObjects {
		return nil, errors.New("invalid binary plist trailer")
	}
	// Division keeps the table-fit check safe from multiplication overflow
	// on an inflated object count.
	tableLimit := uint64(len(data) - 32)
	if p.tableStart < uint64(len(bplistHeader)) || p.tableStart > tableLimit {
		return nil, errors.New("invalid binary plist offset table")
	}
	if p.numObjects > (tableLimit-p.tableStart)/uint64(p.offSize) {
		return nil, errors.New("invalid binary plist offset table")
	}
	return p, nil
}

// offset returns the byte offset of object i.
func (p *parser) offset(i uint64) (uint64, error) {
	if i >= p.numObjects {
		return 0, fmt.Errorf("object reference %d out of range", i)
	}
	start := p.tableStart + i*uint64(p.offSize)
	off := readSizedInt(p.data[start:], p.offSize)
	if off >= p.tableStart {
		return 0, fmt.Errorf("object %d offset out of range", i)
	}
	return off, nil
}

// object decodes object i into a Go value.
func (p *parser) object(i uint64, depth int) (any, error) {
	if depth > maxParseDepth {
		return nil, errors.New("binary plist nesting too deep")
	}
	off, err := p.offset(i)
	if err != nil {
		return nil, err
	}
	m := p.data[off]
	body := off + 1

	switch m >> 4 {
	case 0x0:
		switch m {
		case 0x00:
			return nil, nil
		case 0x08:
			return false, nil
		case 0x09:
			return true, nil
		}
		return nil, fmt.Errorf("unsupported marker 0x%02x", m)
	case 0x1: // integer
		n := 1 << (m & 0x0F)
		if n > 8 {
			return nil, fmt.Errorf("unsupported %d-byte integer", n)
		}
		if err := p.need(body, uint64(n)); err != nil {
			return nil, err
		}
		return int64(readSizedInt(p.data[body:], n)), nil
	case 0x2: // real
		n := 1 << (m & 0x0F)
		if err := p.need(body, uint64(n)); err != nil {
			return nil, err
		}
		switch n {
		case 4:
			return float64(math.Float32frombits(uint32(readSizedInt(p.data[body:], 4)))), nil
		case 8:
			return math.Float64frombits(readSizedInt(p.data[body:], 8)), nil
		}
		return nil, fmt.Errorf("unsupported %d-byte real", n)
	case 0x3: // date
		if m != 0x33 {
			return nil, fmt.Errorf("unsupported marker 0x%02x", m)
		}
		if err := p.need(body, 8); err != nil {
			return nil, err
		}
		secs := math.Float64frombits(readSizedInt(p.data[body:], 8))
		return cfEpoch.Add(time.Duration(secs * float64(time.Second))), nil
	case 0x4: // data
		count, body, err := p.count(m, body)
		if err != nil {
			return nil, err
		}
		if err := p.need(body, count); err != nil {
			return nil, err
		}
		out := make([]byte, count)
		copy(out, p.data[body:])
		return out, nil
	case 0x5: // ASCII string
		count, body, err := p.count(m, body)
		if err != nil {
			return nil, err
		}
		if err := p.need(body, count); err != nil {
			return nil, err
		}
		return string(p.data[body : body+count]), nil
	case 0x6: // UTF-16BE string
		count, body, err := p.count(m, body)
		if err != nil {
			return nil, err
		}
		if err := p.need(body, count*2); err != nil {
			return nil, err
		}
		units := make([]uint16, count)
		for j := range units {
			units[j] = binary.BigEndian.Uint16(p.data[body+uint64(j)*2:])
		}
		return string(utf16.Decode(units)), nil
	case 0x8: // UID
		n := uint64(m&0x0F) + 1
		if n > 8 {
			return nil, fmt.Errorf("unsupported %d-byte uid", n)
		}
		if err := p.need(body, n); err != nil {
			return nil, err
		}
		return int64(readSizedInt(p.data[body:], int(n))), nil
	case 0xA: // array
		count, body, err := p.count(m, body)
		if err != nil {
			return nil, err
		}
		if err := p.need(body, count*uint64(p.refSize)); err != nil {
			return nil, err
		}
		out := make([]any, 0, count)
		for j := uint64(0); j < count; j++ {
			ref := readSizedInt(p.data[body+j*uint64(p.refSize):], p.refSize)
			v, err := p.object(ref, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case 0xD: // dictionary
		count, body, err := p.count(m, body)
		if err != nil {
			return nil, err
		}
		if err := p.need(body, count*2*uint64(p.refSize)); err != nil {
			return nil, err
		}
		out := make(map[string]any, count)
		for j := uint64(0); j < count; j++ {
			keyRef := readSizedInt(p.data[body+j*uint64(p.refSize):], p.refSize)
			valRef := readSizedInt(p.data[body+(count+j)*uint64(p.refSize):], p.refSize)
			kv, err := p.object(keyRef, depth+1)
			if err != nil {
				return nil, err
			}
			key, ok := kv.(string)
			if !ok {
				return nil, fmt.Errorf("dictionary key is %T, not a string", kv)
			}
			v, err := p.object(valRef, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported marker 0x%02x", m)
}

// count resolves an object's element count: either the marker's low nibble
// or, for 0xF, a following integer object. Returns the count and the offset
// of the first element byte.
func (p *parser) count(m byte, body uint64) (uint64, uint64, error) {
	low := uint64(m & 0x0F)
	if low != 0x0F {
		return low, body, nil
	}
	if err := p.need(body, 1); err != nil {
		return 0, 0, err
	}
	im := p.data[body]
	if im>>4 != 0x1 {
		return 0, 0, errors.New("malformed element count")
	}
	n := 1 << (im & 0x0F)
	if n > 8 {
		return 0, 0, errors.New("malformed element count")
	}
	if err := p.need(body+1, uint64(n)); err != nil {
		return 0, 0, err
	}
	c := readSizedInt(p.data[body+1:], n)
	if c > uint64(len(p.data)) {
		return 0, 0, errors.New("malformed element count")
	}
	return c, body + 1 + uint64(n), nil
}

// need verifies that n bytes starting at off lie inside the object area.
func (p *parser) need(off, n uint64) error {
	if off > p.tableStart || p.tableStart-off < n {
		return errTruncated
	}
	return nil
}

// readSizedInt reads an n-byte big-endian unsigned integer. The caller has
// already bounds-checked b.
func readSizedInt(b []byte, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

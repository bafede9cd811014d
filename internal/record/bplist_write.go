// Binary property list writer for folder records.
//
// The host environment's consumers parse record bytes structurally, and the
// order of dictionary fields in the byte stream is part of the on-disk
// contract. A map-based plist encoder cannot guarantee that order, so records
// are written through this dedicated sequential writer: objects are laid out
// depth-first in field order, keys before values, and the same input always
// produces the same bytes.
package record

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf16"
)

// dict is an ordered list of key/value fields. Values are limited to the
// shapes folder records actually use: string, time.Time, []byte and nested
// dict.
type dict []field

type field struct {
	key string
	val any
}

const bplistHeader = "bplist00"

// cfEpoch is the reference date of plist timestamps: 2001-01-01T00:00:00Z.
var cfEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// marshalDict serializes d as a binary property list with d as the top-level
// object, preserving field order byte-for-byte.
func marshalDict(d dict) ([]byte, error) {
	refSize := intWidth(uint64(countObjects(d)))

	w := &plistWriter{refSize: refSize}
	if _, err := w.writeValue(d); err != nil {
		return nil, err
	}
	return w.assemble()
}

// countObjects returns the number of plist objects d flattens to: one per
// dict, one per key and one per leaf value.
func countObjects(d dict) int {
	n := 1
	for _, f := range d {
		n++
		if sub, ok := f.val.(dict); ok {
			n += countObjects(sub)
		} else {
			n++
		}
	}
	return n
}

type plistWriter struct {
	refSize int      // bytes per object reference
	objects [][]byte // encoded objects in index order
}

// reserve claims the next object index so that a dict always precedes the
// objects it references.
func (w *plistWriter) reserve() int {
	w.objects = append(w.objects, nil)
	return len(w.objects) - 1
}

// writeValue encodes v and its children and returns v's object index.
// Dict children are laid out keys first, then values, each in field order.
func (w *plistWriter) writeValue(v any) (int, error) {
	switch t := v.(type) {
	case dict:
		idx := w.reserve()
		keyRefs := make([]int, len(t))
		for i, f := range t {
			keyRefs[i] = w.reserve()
			w.objects[keyRefs[i]] = encodeString(f.key)
		}
		valRefs := make([]int, len(t))
		for i, f := range t {
			ref, err := w.writeValue(f.val)
			if err != nil {
				return 0, err
			}
			valRefs[i] = ref
		}
		buf := marker(0xD0, len(t))
		for _, r := range keyRefs {
			buf = appendRef(buf, r, w.refSize)
		}
		for _, r := range valRefs {
			buf = appendRef(buf, r, w.refSize)
		}
		w.objects[idx] = buf
		return idx, nil
	case string:
		idx := w.reserve()
		w.objects[idx] = encodeString(t)
		return idx, nil
	case []byte:
		idx := w.reserve()
		w.objects[idx] = append(marker(0x40, len(t)), t...)
		return idx, nil
	case time.Time:
		idx := w.reserve()
		buf := make([]byte, 9)
		buf[0] = 0x33
		binary.BigEndian.PutUint64(buf[1:], math.Float64bits(t.Sub(cfEpoch).Seconds()))
		w.objects[idx] = buf
		return idx, nil
	default:
		return 0, fmt.Errorf("unsupported record value type %T", v)
	}
}

// assemble concatenates header, objects, offset table and trailer.
func (w *plistWriter) assemble() ([]byte, error) {
	out := []byte(bplistHeader)
	offsets := make([]uint64, len(w.objects))
	for i, obj := range w.objects {
		offsets[i] = uint64(len(out))
		out = append(out, obj...)
	}

	tableStart := uint64(len(out))
	offSize := intWidth(tableStart)
	for _, off := range offsets {
		out = appendSizedInt(out, off, offSize)
	}

	trailer := make([]byte, 32)
	trailer[6] = byte(offSize)
	trailer[7] = byte(w.refSize)
	binary.BigEndian.PutUint64(trailer[8:], uint64(len(w.objects)))
	binary.BigEndian.PutUint64(trailer[16:], 0) // top object
	binary.BigEndian.PutUint64(trailer[24:], tableStart)
	return append(out, trailer...), nil
}

// encodeString emits an ASCII string object, or a UTF-16BE one when s
// contains characters outside ASCII.
func encodeString(s string) []byte {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return append(marker(0x50, len(s)), s...)
	}
	units := utf16.Encode([]rune(s))
	buf := marker(0x60, len(units))
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return buf
}

// marker emits an object marker byte for the given type nibble and element
// count, spilling counts of 15 or more into a following integer object.
func marker(kind byte, n int) []byte {
	if n < 0x0F {
		return []byte{kind | byte(n)}
	}
	buf := []byte{kind | 0x0F}
	width := intWidth(uint64(n))
	buf = append(buf, 0x10|byte(log2(width)))
	return appendSizedInt(buf, uint64(n), width)
}

// intWidth returns the narrowest power-of-two byte width that holds v.
func intWidth(v uint64) int {
	switch {
	case v <= math.MaxUint8:
		return 1
	case v <= math.MaxUint16:
		return 2
	case v <= math.MaxUint32:
		return 4
	default:
		return 8
	}
}

func log2(width int) int {
	n := 0
	for width > 1 {
		width >>= 1
		n++
	}
	return n
}

func appendRef(buf []byte, ref, size int) []byte {
	return appendSizedInt(buf, uint64(ref), size)
}

func appendSizedInt(buf []byte, v uint64, size int) []byte {
	for i := size - 1; i >= 0; i-- {
		buf = append(buf, byte(v>>(8*uint(i))))
	}
	return buf
}

package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrNotObject is returned by DecodeObject when the top-level JSON value is
// not an object.
var ErrNotObject = errors.New("fixture root must be a JSON object")

// decodeOptions mirror a permissive JSON.parse: repeated names are accepted
// (last value wins) and invalid UTF-8 is replaced rather than rejected.
var decodeOptions = []jsontext.Options{
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
}

// Decode parses a single JSON value, preserving object key order.
// Trailing non-whitespace after the value is an error.
func Decode(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), decodeOptions...)

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

// DecodeObject parses data and requires the top-level value to be an object.
func DecodeObject(data []byte) (*Object, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch tok.Kind() {
	case 'n':
		return Null{}, nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return decodeNumber(tok.String())
	case '[':
		arr := Array{}
		for dec.PeekKind() != ']' {
			elem, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
			}
			arr = append(arr, elem)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		obj := NewObject()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			key := name.String()
			val, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", key, err)
			}
			obj.Set(key, val)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok.Kind())
	}
}

// decodeNumber parses a number literal. Literals beyond float64 range read
// as null, which is what a JSON round trip of the resulting Infinity yields.
func decodeNumber(raw string) (Value, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if math.IsInf(f, 0) {
		return Null{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("number %s: %w", raw, err)
	}
	return Number(f), nil
}

// Indent is the indentation unit used by Encode.
const Indent = "  "

// Encode serializes v as indented JSON followed by a newline.
//
// Layout:
//   - two-space indentation, one array element or object field per line
//   - `"key": value` with a single space after the colon
//   - empty containers written as [] and {}
//   - no HTML escaping; only quote, backslash and control characters escaped
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(FormatNumber(float64(val)))
	case String:
		return encodeString(buf, string(val))
	case Array:
		return encodeArray(buf, val, depth)
	case *Object:
		return encodeObject(buf, val, depth)
	default:
		return fmt.Errorf("unsupported fixture value type: %T", v)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	quoted, err := jsontext.AppendQuote(buf.AvailableBuffer(), s)
	if err != nil {
		return fmt.Errorf("quote %q: %w", s, err)
	}
	buf.Write(quoted)
	return nil
}

func encodeArray(buf *bytes.Buffer, arr Array, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}

	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		newline(buf, depth+1)
		if err := encodeValue(buf, elem, depth+1); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	newline(buf, depth)
	buf.WriteByte(']')
	return nil
}

func encodeObject(buf *bytes.Buffer, obj *Object, depth int) error {
	if obj.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}

	buf.WriteByte('{')
	for i, k := range obj.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		newline(buf, depth+1)
		if err := encodeString(buf, k); err != nil {
			return err
		}
		buf.WriteString(": ")
		if err := encodeValue(buf, obj.values[k], depth+1); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	newline(buf, depth)
	buf.WriteByte('}')
	return nil
}

func newline(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for range depth {
		buf.WriteString(Indent)
	}
}

// FormatNumber formats f the way ECMAScript's Number.prototype.toString
// does: integral values have no fraction, magnitudes below 1e-6 or at or
// above 1e21 use exponent notation ("1e+21", "1.5e-7"), and negative zero
// prints as "0". Non-finite values, which JSON cannot carry, print as null.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("e-07"); ECMAScript does not.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

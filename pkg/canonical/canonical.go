// Package canonical produces the exact byte sequence clients sign.
//
// The encoding is JSON with a fixed layout: object keys sorted
// lexicographically, no whitespace, nil values omitted entirely, and
// locale-independent number formatting. Identical logical input yields
// byte-identical output on every platform, which is what makes signatures
// reproducible server-side.
package canonical

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Encode serializes payload into its canonical byte form.
//
// Supported value types: string, bool, int, int32, int64, float64, nil,
// []interface{} and map[string]interface{}. Any other type is a caller
// contract violation and panics; attacker input never reaches this package
// as Go values of arbitrary type.
func Encode(payload map[string]interface{}) []byte {
	var b strings.Builder
	encodeObject(&b, payload)
	return []byte(b.String())
}

func encodeObject(b *strings.Builder, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	first := true
	for _, k := range keys {
		if !first {
			b.WriteByte(',')
		}
		first = false
		encodeString(b, k)
		b.WriteByte(':')
		encodeValue(b, m[k])
	}
	b.WriteByte('}')
}

func encodeValue(b *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case string:
		encodeString(b, val)
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case int:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(val, 10))
	case float64:
		encodeFloat(b, val)
	case []interface{}:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeValue(b, item)
		}
		b.WriteByte(']')
	case map[string]interface{}:
		encodeObject(b, val)
	default:
		panic(fmt.Sprintf("canonical: unsupported value type %T", v))
	}
}

func encodeFloat(b *strings.Builder, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("canonical: non-finite number")
	}
	// Fixed notation, shortest representation that round-trips. Never
	// exponent form, so the output is independent of magnitude thresholds
	// that vary between JSON encoders.
	b.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
}

const hexDigits = "0123456789abcdef"

func encodeString(b *strings.Builder, s string) {
	if !utf8.ValidString(s) {
		panic("canonical: string is not valid UTF-8")
	}
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[r>>4])
				b.WriteByte(hexDigits[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

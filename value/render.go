package value

import (
	"strconv"
	"strings"
)

// FormatNumber renders a Number the language's canonical way: decimal
// without trailing zeros, integers without a decimal point.
func FormatNumber(f float64) string {
	if f == float64(int64(f)) && !strings.ContainsAny(strconv.FormatFloat(f, 'g', -1, 64), "eE") {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

// ToDisplayString renders v for string interpolation:
//
//	null   -> "null"
//	bool   -> "true" / "false"
//	number -> FormatNumber
//	string -> verbatim
//	list/dict -> JSON-compact form
//	vector -> "<vector n=...>"
func ToDisplayString(v Value) string {
	switch t := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		if t.Value {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(t.Value)
	case String:
		return t.Value
	case *List, *Dict:
		return ToJSON(v)
	case *Vector:
		return t.Display()
	default:
		return v.Inspect()
	}
}

// ToJSON renders a scalar/list/dict value as JSON-compact text. Used
// both by string interpolation and anywhere a stable round-trip
// serialization of a value is needed.
func ToJSON(v Value) string {
	var b strings.Builder
	writeJSON(&b, v)
	return b.String()
}

func writeJSON(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Bool:
		if t.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(FormatNumber(t.Value))
	case String:
		b.WriteString(strconv.Quote(t.Value))
	case *List:
		b.WriteByte('[')
		for i, e := range t.Elements {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSON(b, e)
		}
		b.WriteByte(']')
	case *Dict:
		b.WriteByte('{')
		for i, k := range t.order {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			val, _ := t.Get(k)
			writeJSON(b, val)
		}
		b.WriteByte('}')
	case *Vector:
		b.WriteString(strconv.Quote(t.Display()))
	default:
		b.WriteString(strconv.Quote(v.Inspect()))
	}
}

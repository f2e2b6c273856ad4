package soap

import (
	"strconv"
	"strings"

	"github.com/Macmod/go-soda/datastream"
)

// ParamType is the closed set of scalar types a dcop:Call parameter may
// declare.
type ParamType int

const (
	ParamString ParamType = iota
	ParamBoolean
	ParamInt
	ParamDecimal
	ParamFloat
	ParamDouble
)

// ParseParamType maps the text of a <type> element onto a ParamType. The
// match is exact and case-sensitive; an empty type means string.
func ParseParamType(text string) (ParamType, bool) {
	switch text {
	case "", "string":
		return ParamString, true
	case "boolean":
		return ParamBoolean, true
	case "int":
		return ParamInt, true
	case "decimal":
		return ParamDecimal, true
	case "float":
		return ParamFloat, true
	case "double":
		return ParamDouble, true
	}
	return 0, false
}

func (t ParamType) String() string {
	switch t {
	case ParamString:
		return "string"
	case ParamBoolean:
		return "boolean"
	case ParamInt:
		return "int"
	case ParamDecimal:
		return "decimal"
	case ParamFloat:
		return "float"
	case ParamDouble:
		return "double"
	}
	return "ParamType(" + strconv.Itoa(int(t)) + ")"
}

// Token is the name the type takes in a DCOP method signature.
func (t ParamType) Token() string {
	switch t {
	case ParamBoolean:
		return "bool"
	case ParamInt:
		return "int"
	case ParamDecimal, ParamFloat:
		return "float"
	case ParamDouble:
		return "double"
	}
	return "string"
}

// Param is one encoded argument of a call.
type Param struct {
	Type    ParamType
	Token   string
	Encoded []byte
}

// encode writes value to w using the binary form matching t.Token().
//
// Numbers are parsed leniently unless strict is set: surrounding whitespace
// is ignored and text that does not convert (including ints outside the
// int32 range) encodes as zero. ok is false only in strict mode.
//
// "decimal" is converted at double width and then narrowed, because its
// signature token is "float" and the receiver reads four bytes.
func (t ParamType) encode(w *datastream.Writer, value string, strict bool) (ok bool, err error) {
	switch t {
	case ParamString:
		return true, w.WriteString(value)
	case ParamBoolean:
		w.WriteBool(value == "true" || value == "1")
		return true, nil
	case ParamInt:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if err != nil {
			if strict {
				return false, nil
			}
			n = 0
		}
		w.WriteInt32(int32(n))
		return true, nil
	case ParamDecimal:
		f, ok := parseFloat(value, 64, strict)
		if !ok {
			return false, nil
		}
		w.WriteFloat32(float32(f))
		return true, nil
	case ParamFloat:
		f, ok := parseFloat(value, 32, strict)
		if !ok {
			return false, nil
		}
		w.WriteFloat32(float32(f))
		return true, nil
	case ParamDouble:
		f, ok := parseFloat(value, 64, strict)
		if !ok {
			return false, nil
		}
		w.WriteFloat64(f)
		return true, nil
	}
	return false, nil
}

func parseFloat(value string, bitSize int, strict bool) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), bitSize)
	if err != nil {
		if strict {
			return 0, false
		}
		return 0, true
	}
	return f, true
}

// encodeParams walks every <param> below the method element in document
// order, appending each encoding to the session's buffer.
func (s *Session) encodeParams(method *Element) *Fault {
	w := datastream.NewWriter()
	var params []Param

	for _, p := range method.ElementsByTagName("param") {
		types := p.ElementsByTagName("type")
		if len(types) != 1 {
			return newDetailedFault(Client, faultTypeCount)
		}
		typeText := types[0].Text()
		if typeText == "" {
			return newDetailedFault(Client, faultTypeEmpty)
		}

		values := p.ElementsByTagName("value")
		if len(values) != 1 {
			return newDetailedFault(Client, faultValueCount)
		}
		value := values[0].Text()

		pt, ok := ParseParamType(typeText)
		if !ok {
			return &Fault{Code: Client, String: faultTypeNotUnderstood, Detail: "Don't understand type `" + typeText + "'"}
		}

		start := w.Len()
		ok, err := pt.encode(w, value, s.strictNumbers)
		if err != nil {
			return &Fault{Code: Client, String: faultValueNotUnderstood, Detail: err.Error()}
		}
		if !ok {
			return &Fault{Code: Client, String: faultValueNotUnderstood, Detail: "`" + value + "' is not a valid " + pt.String()}
		}
		params = append(params, Param{
			Type:    pt,
			Token:   pt.Token(),
			Encoded: append([]byte(nil), w.Bytes()[start:]...),
		})
	}

	s.call.Params = params
	s.call.Data = append([]byte(nil), w.Bytes()...)
	return nil
}

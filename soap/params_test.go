package soap

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"

	"github.com/Macmod/go-soda/datastream"
)

func paramEnvelope(params ...[2]string) string {
	var sb strings.Builder
	for _, p := range params {
		fmt.Fprintf(&sb, "<param><type>%s</type><value>%s</value></param>", p[0], p[1])
	}
	return envelope("", authHeader+callWith(`<application>kmix</application><object>Mixer0</object><method><name>method</name>`+sb.String()+`</method>`))
}

func validateParams(c *qt.C, opts []Option, params ...[2]string) (*Call, error) {
	return Validate(mustParse(c, paramEnvelope(params...)), []byte(testKey), opts...)
}

func TestParamTypeTable(t *testing.T) {
	tests := []struct {
		text  string
		want  ParamType
		token string
	}{
		{"", ParamString, "string"},
		{"string", ParamString, "string"},
		{"boolean", ParamBoolean, "bool"},
		{"int", ParamInt, "int"},
		{"decimal", ParamDecimal, "float"},
		{"float", ParamFloat, "float"},
		{"double", ParamDouble, "double"},
	}
	for _, tc := range tests {
		c := qt.New(t)
		pt, ok := ParseParamType(tc.text)
		c.Assert(ok, qt.IsTrue, qt.Commentf("type %q", tc.text))
		c.Assert(pt, qt.Equals, tc.want)
		c.Assert(pt.Token(), qt.Equals, tc.token)
	}

	for _, bad := range []string{"date", "Int", "String", " int", "bool"} {
		_, ok := ParseParamType(bad)
		c := qt.New(t)
		c.Assert(ok, qt.IsFalse, qt.Commentf("type %q", bad))
	}
}

func TestSignatureAndRoundTrip(t *testing.T) {
	c := qt.New(t)

	call, err := validateParams(c, nil,
		[2]string{"int", "42"},
		[2]string{"string", "hello"},
		[2]string{"boolean", "true"},
	)
	c.Assert(err, qt.IsNil)
	c.Assert(call.Signature(), qt.Equals, "method(int, string, bool)")

	name, tokens, err := datastream.ParseSignature(call.Signature())
	c.Assert(err, qt.IsNil)
	c.Assert(name, qt.Equals, "method")
	values, err := datastream.Decode(tokens, call.Data)
	c.Assert(err, qt.IsNil)
	if diff := cmp.Diff([]any{int32(42), "hello", true}, values); diff != "" {
		t.Fatalf("decoded arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsConcatenateInOrder(t *testing.T) {
	c := qt.New(t)

	call, err := validateParams(c, nil,
		[2]string{"double", "1.25"},
		[2]string{"string", "untyped"},
		[2]string{"int", "-7"},
	)
	c.Assert(err, qt.IsNil)
	c.Assert(call.Params, qt.HasLen, 3)
	c.Assert(call.Tokens(), qt.DeepEquals, []string{"double", "string", "int"})

	var joined []byte
	for _, p := range call.Params {
		joined = append(joined, p.Encoded...)
	}
	c.Assert(joined, qt.DeepEquals, call.Data)
	c.Assert(call.Params[0].Encoded, qt.HasLen, 8)
	c.Assert(call.Params[2].Encoded, qt.HasLen, 4)
}

func TestScalarRoundTrip(t *testing.T) {
	tests := []struct {
		typ   string
		value string
		want  any
	}{
		{"string", "grüße", "grüße"},
		{"string", "", ""},
		{"boolean", "true", true},
		{"boolean", "1", true},
		{"boolean", "false", false},
		{"boolean", "TRUE", false},
		{"boolean", "yes", false},
		{"int", "2147483647", int32(math.MaxInt32)},
		{"int", " -12 ", int32(-12)},
		{"decimal", "0.1", float32(0.1)},
		{"float", "3.14159", float32(3.14159)},
		{"double", "3.141592653589793", math.Pi},
		{"double", "-1e300", -1e300},
	}
	for _, test := range tests {
		t.Run(test.typ+"="+test.value, func(t *testing.T) {
			c := qt.New(t)
			call, err := validateParams(c, nil, [2]string{test.typ, test.value})
			c.Assert(err, qt.IsNil)
			values, err := datastream.Decode(call.Tokens(), call.Data)
			c.Assert(err, qt.IsNil)
			c.Assert(values, qt.HasLen, 1)
			c.Assert(values[0], qt.Equals, test.want)
		})
	}
}

func TestLenientNumbers(t *testing.T) {
	tests := []struct {
		typ   string
		value string
		want  any
	}{
		{"int", "forty-two", int32(0)},
		{"int", "4294967296", int32(0)},
		{"int", "1.5", int32(0)},
		{"int", "", int32(0)},
		{"float", "NaN-ish", float32(0)},
		{"decimal", "", float32(0)},
		{"double", "1e400", float64(0)},
	}
	for _, test := range tests {
		t.Run(test.typ+"="+test.value, func(t *testing.T) {
			c := qt.New(t)
			call, err := validateParams(c, nil, [2]string{test.typ, test.value})
			c.Assert(err, qt.IsNil)
			values, err := datastream.Decode(call.Tokens(), call.Data)
			c.Assert(err, qt.IsNil)
			c.Assert(values[0], qt.Equals, test.want)

			_, err = validateParams(c, []Option{WithStrictNumbers()}, [2]string{test.typ, test.value})
			var f *Fault
			c.Assert(errors.As(err, &f), qt.IsTrue)
			c.Assert(f.Code, qt.Equals, Client)
			c.Assert(f.String, qt.Equals, "Parameter value not understood")
		})
	}
}

func TestStrictNumbersAcceptValidValues(t *testing.T) {
	c := qt.New(t)
	call, err := validateParams(c, []Option{WithStrictNumbers()},
		[2]string{"int", "7"},
		[2]string{"float", "0.5"},
		[2]string{"boolean", "nonsense"},
	)
	c.Assert(err, qt.IsNil)
	c.Assert(call.Signature(), qt.Equals, "method(int, float, bool)")
}

func TestParamFaults(t *testing.T) {
	tests := []struct {
		about  string
		method string
		str    string
		detail string
	}{{
		about:  "unknown type",
		method: `<param><type>date</type><value>2001-01-01</value></param>`,
		str:    "Parameter type not understood",
		detail: "Don't understand type `date'",
	}, {
		about:  "missing type",
		method: `<param><value>1</value></param>`,
		str:    "type node count is not 1",
	}, {
		about:  "two types",
		method: `<param><type>int</type><type>int</type><value>1</value></param>`,
		str:    "type node count is not 1",
	}, {
		about:  "empty type",
		method: `<param><type></type><value>1</value></param>`,
		str:    "type is empty",
	}, {
		about:  "missing value",
		method: `<param><type>int</type></param>`,
		str:    "value node count is not 1",
	}, {
		about:  "fault in a later param",
		method: `<param><type>int</type><value>1</value></param><param><type>long</type><value>1</value></param>`,
		str:    "Parameter type not understood",
	}}
	for _, test := range tests {
		t.Run(test.about, func(t *testing.T) {
			c := qt.New(t)
			doc := envelope("", authHeader+callWith(`<application>a</application><object>o</object><method><name>m</name>`+test.method+`</method>`))
			call, err := Validate(mustParse(c, doc), []byte(testKey))
			c.Assert(call, qt.IsNil)
			var f *Fault
			c.Assert(errors.As(err, &f), qt.IsTrue)
			c.Assert(f.Code, qt.Equals, Client)
			c.Assert(f.String, qt.Equals, test.str)
			if test.detail != "" {
				c.Assert(f.Detail, qt.Equals, test.detail)
			}
		})
	}
}

func TestEmptyValueIsAllowed(t *testing.T) {
	c := qt.New(t)
	call, err := validateParams(c, nil, [2]string{"string", ""})
	c.Assert(err, qt.IsNil)
	c.Assert(call.Data, qt.DeepEquals, []byte{0, 0, 0, 0})
}

func TestInvalidUTF8StringValue(t *testing.T) {
	c := qt.New(t)

	param := NewElement("param").Append(
		NewElement("type").Append(CharData("string")),
		NewElement("value").Append(CharData("caf\xe9")),
	)
	call := NewElement("dcop:Call", Attr{Name: "xmlns:dcop", Value: NsDCOP}).Append(
		NewElement("application").Append(CharData("a")),
		NewElement("object").Append(CharData("o")),
		NewElement("method").Append(NewElement("name").Append(CharData("m")), param),
	)
	root := NewElement("SOAP-ENV:Envelope", Attr{Name: "xmlns:SOAP-ENV", Value: NsSOAPEnvelope}).Append(
		NewElement("SOAP-ENV:Body").Append(call),
	)

	_, err := Validate(root, []byte(testKey), WithUnauthenticated())
	var f *Fault
	c.Assert(errors.As(err, &f), qt.IsTrue)
	c.Assert(f.Code, qt.Equals, Client)
	c.Assert(f.String, qt.Equals, "Parameter value not understood")
	c.Assert(f.Detail, qt.Equals, `string "caf\xe9" with invalid UTF-8 not valid`)
}

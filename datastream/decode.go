package datastream

import (
	"strings"

	"github.com/juju/errors"
)

// Decode reads one value per signature token from data. Values come back as
// string, bool, int32, float32 or float64. Trailing bytes are an error:
// a buffer and its signature must describe each other exactly.
func Decode(tokens []string, data []byte) ([]any, error) {
	r := NewReader(data)
	values := make([]any, 0, len(tokens))
	for i, tok := range tokens {
		v, err := r.ReadToken(tok)
		if err != nil {
			return nil, errors.Annotatef(err, "argument %d (%s)", i, tok)
		}
		values = append(values, v)
	}
	if r.Remaining() != 0 {
		return nil, errors.NotValidf("%d trailing bytes after %d arguments", r.Remaining(), len(tokens))
	}
	return values, nil
}

// ReadToken reads a single value of the type named by a signature token.
func (r *Reader) ReadToken(token string) (any, error) {
	switch token {
	case "string", "QString":
		return r.ReadString()
	case "QCString":
		return r.ReadCString()
	case "bool":
		return r.ReadBool()
	case "int":
		return r.ReadInt32()
	case "float":
		return r.ReadFloat32()
	case "double":
		return r.ReadFloat64()
	default:
		return nil, errors.NotSupportedf("signature type %q", token)
	}
}

// ParseSignature splits "name(t1, t2)" into the method name and its tokens.
func ParseSignature(sig string) (string, []string, error) {
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return "", nil, errors.NotValidf("signature %q", sig)
	}
	name := sig[:open]
	inner := strings.TrimSpace(sig[open+1 : len(sig)-1])
	if inner == "" {
		return name, nil, nil
	}
	parts := strings.Split(inner, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", nil, errors.NotValidf("empty argument type in signature %q", sig)
		}
		tokens = append(tokens, p)
	}
	return name, tokens, nil
}

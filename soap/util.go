package soap

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

const (
	NsSOAPEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"
	NsSOAPEncoding = "http://schemas.xmlsoap.org/soap/encoding/"
	NsDCOP         = "http://developer.kde.org/dcop/"
)

// EnvelopePrefix is the prefix the builders in this package use for the
// SOAP envelope namespace. The validator accepts any prefix.
const EnvelopePrefix = "SOAP-ENV"

func escapeXML(s string) string {
	if s == "" {
		return ""
	}

	// Escape XML special characters and drop characters that are invalid in XML 1.0.
	// Valid ranges: https://www.w3.org/TR/xml/#charsets
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isValidXML10Rune(r) {
			continue
		}
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isValidXML10Rune(r rune) bool {
	return r == 0x9 || r == 0xA || r == 0xD ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// PrettyXML re-indents an XML document with two spaces, keeping prefixes
// as written. If formatting fails, it returns the original input.
func PrettyXML(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	dec := xml.NewDecoder(strings.NewReader(trimmed))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	for {
		tok, err := dec.RawToken()
		if err != nil {
			if err == io.EOF {
				break
			}
			return input
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
		case xml.ProcInst:
			if t.Target == "xml" {
				// The encoder never indents after a declaration.
				if err := enc.EncodeToken(t); err != nil {
					return input
				}
				if err := enc.Flush(); err != nil {
					return input
				}
				buf.WriteByte('\n')
				continue
			}
		case xml.StartElement:
			// Keep prefixes as written; the encoder would turn Space into
			// a default namespace declaration.
			t.Name = xml.Name{Local: rawName(t.Name)}
			attrs := make([]xml.Attr, len(t.Attr))
			for i, a := range t.Attr {
				attrs[i] = xml.Attr{Name: xml.Name{Local: rawName(a.Name)}, Value: a.Value}
			}
			t.Attr = attrs
			tok = t
		case xml.EndElement:
			tok = xml.EndElement{Name: xml.Name{Local: rawName(t.Name)}}
		}
		if err := enc.EncodeToken(tok); err != nil {
			return input
		}
	}
	if err := enc.Flush(); err != nil {
		return input
	}
	return buf.String()
}

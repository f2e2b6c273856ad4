package soap

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/juju/errors"
	"golang.org/x/net/html/charset"
)

// MaxDepth bounds element nesting accepted by ParseElement.
const MaxDepth = 256

// Node is one child of an Element: *Element, CharData, Comment or ProcInst.
type Node interface {
	node()
}

// CharData is text content. ParseElement never produces whitespace-only
// CharData, but hand-built trees may contain it.
type CharData string

// Comment is an XML comment.
type Comment string

// ProcInst is a processing instruction inside the document element.
type ProcInst struct {
	Target string
	Inst   string
}

func (*Element) node() {}
func (CharData) node() {}
func (Comment) node()  {}
func (ProcInst) node() {}

// Attr is an attribute keyed by its name as written, e.g. "xmlns:dcop" or
// "SOAP-ENV:mustUnderstand".
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the element tree the validator walks. Names are kept
// exactly as they appear in the document; no namespace resolution is done,
// since the envelope rules compare prefixes and declarations literally.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []Node
}

// NewElement is a small constructor used when trees are built by hand.
func NewElement(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

// Append adds children in order and returns e for chaining.
func (e *Element) Append(children ...Node) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Attr looks up an attribute by its written name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text concatenates all character data below e in document order.
func (e *Element) Text() string {
	var sb strings.Builder
	e.appendText(&sb)
	return sb.String()
}

func (e *Element) appendText(sb *strings.Builder) {
	for _, c := range e.Children {
		switch n := c.(type) {
		case CharData:
			sb.WriteString(string(n))
		case *Element:
			if n != nil {
				n.appendText(sb)
			}
		}
	}
}

// ElementsByTagName returns every descendant of e (not e itself) whose
// written name equals name, in document order.
func (e *Element) ElementsByTagName(name string) []*Element {
	var out []*Element
	e.collect(name, &out)
	return out
}

func (e *Element) collect(name string, out *[]*Element) {
	for _, c := range e.Children {
		child, ok := asElement(c)
		if !ok {
			continue
		}
		if child.Name == name {
			*out = append(*out, child)
		}
		child.collect(name, out)
	}
}

// asElement treats a nil *Element like any other non-element node.
func asElement(n Node) (*Element, bool) {
	e, ok := n.(*Element)
	return e, ok && e != nil
}

// ParseElement reads one XML document and returns its document element.
//
// Raw tokens are used so that prefixes survive untranslated. Because
// RawToken does not check nesting, tag balance is verified here.
// Whitespace-only text is dropped. Documents declaring a non UTF-8
// encoding are transcoded.
func ParseElement(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Element
		stack []*Element
	)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Annotate(err, "failed to parse XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, errors.NotValidf("second document element <%s>", rawName(t.Name))
			}
			if len(stack) >= MaxDepth {
				return nil, errors.NotValidf("element nesting deeper than %d", MaxDepth)
			}
			el := &Element{Name: rawName(t.Name)}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: rawName(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.NotValidf("unexpected </%s>", rawName(t.Name))
			}
			top := stack[len(stack)-1]
			if name := rawName(t.Name); name != top.Name {
				return nil, errors.NotValidf("</%s> closing <%s>", name, top.Name)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) != 0 {
					return nil, errors.NotValidf("text outside the document element")
				}
				continue
			}
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			appendChild(stack, CharData(t))

		case xml.Comment:
			if len(stack) > 0 {
				appendChild(stack, Comment(t))
			}

		case xml.ProcInst:
			if len(stack) > 0 {
				appendChild(stack, ProcInst{Target: t.Target, Inst: string(t.Inst)})
			}
		}
	}

	if root == nil {
		return nil, errors.NotFoundf("document element")
	}
	if len(stack) != 0 {
		return nil, errors.NotValidf("unclosed <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}

func appendChild(stack []*Element, n Node) {
	parent := stack[len(stack)-1]
	// The decoder may split text around entities; keep one CharData per run.
	if cd, ok := n.(CharData); ok && len(parent.Children) > 0 {
		if prev, ok := parent.Children[len(parent.Children)-1].(CharData); ok {
			parent.Children[len(parent.Children)-1] = prev + cd
			return
		}
	}
	parent.Children = append(parent.Children, n)
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

package operators

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/specialistvlad/radgo/internal/radon"
)

// ParseJSON decodes a single JSON document into a Value. Numbers keep their
// exact text until converted, so integers up to 128 bits survive. A null
// anywhere becomes an embedded WrongType error.
func ParseJSON(text string) radon.Value {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return radon.NewError(radon.ParseError, "invalid JSON: %s", jsonErrorText(err))
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return radon.NewError(radon.ParseError, "invalid JSON: trailing data after document")
	}
	return fromJSON(doc)
}

func jsonErrorText(err error) string {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "unexpected end of input"
	}
	return err.Error()
}

func fromJSON(x any) radon.Value {
	switch v := x.(type) {
	case nil:
		return radon.NewError(radon.WrongType, "null value")
	case bool:
		return radon.Boolean(v)
	case string:
		return radon.String(v)
	case json.Number:
		return radon.NumberFromString(v.String())
	case []any:
		out := make([]radon.Value, len(v))
		for i, e := range v {
			out[i] = fromJSON(e)
		}
		return radon.NewArray(out...)
	case map[string]any:
		out := make(map[string]radon.Value, len(v))
		for k, e := range v {
			out[k] = fromJSON(e)
		}
		return radon.NewMap(out)
	}
	return radon.NewError(radon.ParseError, "unexpected JSON value %T", x)
}

// ParseXML turns an XML document into nested maps. The result has a single
// key, the name of the root element. An element holding only text becomes a
// String; otherwise it becomes a Map with "@attr" entries for attributes,
// one entry per child name (an Array when the name repeats) and "#text" for
// any non-blank text.
func ParseXML(text string) radon.Value {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true

	type element struct {
		name     string
		attrs    []xml.Attr
		children map[string][]radon.Value
		order    []string
		text     bytes.Buffer
	}
	var stack []*element
	var root radon.Value
	var rootName string

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return radon.NewError(radon.ParseError, "invalid XML: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return radon.NewError(radon.ParseError, "invalid XML: more than one root element")
			}
			stack = append(stack, &element{name: t.Name.Local, attrs: t.Attr, children: map[string][]radon.Value{}})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			body := strings.TrimSpace(e.text.String())
			var v radon.Value
			if len(e.attrs) == 0 && len(e.order) == 0 {
				v = radon.String(body)
			} else {
				m := make(map[string]radon.Value, len(e.attrs)+len(e.order)+1)
				for _, a := range e.attrs {
					m["@"+a.Name.Local] = radon.String(a.Value)
				}
				for _, name := range e.order {
					kids := e.children[name]
					if len(kids) == 1 {
						m[name] = kids[0]
					} else {
						m[name] = radon.NewArray(kids...)
					}
				}
				if body != "" {
					m["#text"] = radon.String(body)
				}
				v = radon.NewMap(m)
			}
			if len(stack) == 0 {
				root, rootName = v, e.name
				continue
			}
			parent := stack[len(stack)-1]
			if _, seen := parent.children[e.name]; !seen {
				parent.order = append(parent.order, e.name)
			}
			parent.children[e.name] = append(parent.children[e.name], v)
		}
	}
	if root == nil {
		return radon.NewError(radon.ParseError, "invalid XML: no root element")
	}
	return radon.NewMap(map[string]radon.Value{rootName: root})
}

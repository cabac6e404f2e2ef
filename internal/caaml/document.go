package caaml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// element is one node of the decoded document tree. encoding/xml resolves
// prefixes for us: name.Space always holds the full namespace URI.
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	text     string
	children []*element
}

// decodeDocument reads the whole document into an element tree rooted at the
// document element.
func decodeDocument(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *element
	var stack []*element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedDocument)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced end element", ErrMalformedDocument)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: unterminated element", ErrMalformedDocument)
	}
	return root, nil
}

// trimmedText returns the element's character data with surrounding
// whitespace removed.
func (e *element) trimmedText() string {
	return strings.TrimSpace(e.text)
}

// attr returns the value of the named attribute, or "" if missing.
// Unqualified attribute names match regardless of namespace.
func (e *element) attr(space, local string) string {
	for _, a := range e.attrs {
		if a.Name.Local != local {
			continue
		}
		if space == "" || a.Name.Space == space {
			return a.Value
		}
	}
	return ""
}

// find returns the first descendant (depth-first, document order) with the
// given qualified name, or nil.
func (e *element) find(name xml.Name) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant with the given qualified name, in
// document order.
func (e *element) findAll(name xml.Name) []*element {
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
		out = append(out, c.findAll(name)...)
	}
	return out
}

// findLocal returns the first descendant whose local name matches, in any
// namespace. Used for extension elements whose namespace varies between
// schema exports.
func (e *element) findLocal(local string) *element {
	for _, c := range e.children {
		if c.name.Local == local {
			return c
		}
		if found := c.findLocal(local); found != nil {
			return found
		}
	}
	return nil
}

// child returns the first direct child with the given qualified name, or nil.
func (e *element) child(name xml.Name) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

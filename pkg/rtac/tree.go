package rtac

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Node is a generic XML element. Exports are decoded into this tree instead
// of typed structs because the vendor schemas are loose and only a few paths
// matter.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []*Node    `xml:",any"`
}

// Name returns the element's local name.
func (n *Node) Name() string {
	return n.XMLName.Local
}

// Text returns the element's own character data.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.Content
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child with the given local name.
func (n *Node) Child(local string) *Node {
	for _, c := range n.Children {
		if c.XMLName.Local == local {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the direct children with the given local name.
func (n *Node) ChildrenNamed(local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.XMLName.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first descendant (not n itself) with the given local
// name, in document order.
func (n *Node) Find(local string) *Node {
	var found *Node
	n.walkDescendants(func(d *Node) bool {
		if d.XMLName.Local == local {
			found = d
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant (not n itself) with the given local name,
// in document order.
func (n *Node) FindAll(local string) []*Node {
	var out []*Node
	n.walkDescendants(func(d *Node) bool {
		if d.XMLName.Local == local {
			out = append(out, d)
		}
		return true
	})
	return out
}

// Walk visits n and all of its descendants in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	n.walkDescendants(func(d *Node) bool {
		fn(d)
		return true
	})
}

// walkDescendants stops early when fn returns false.
func (n *Node) walkDescendants(fn func(*Node) bool) bool {
	for _, c := range n.Children {
		if !fn(c) {
			return false
		}
		if !c.walkDescendants(fn) {
			return false
		}
	}
	return true
}

// document wraps root so that searches from the wrapper include root itself.
func document(root *Node) *Node {
	return &Node{Children: []*Node{root}}
}

// Decode reads a complete XML document into a Node tree. The input must hold
// exactly one root element; anything around it other than whitespace,
// comments, processing instructions or a doctype is rejected.
func Decode(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	start, err := rootStart(dec)
	if err != nil {
		return nil, err
	}
	var root Node
	if err := dec.DecodeElement(&root, &start); err != nil {
		return nil, err
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return &root, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return nil, fmt.Errorf("unexpected second root element <%s>", t.Name.Local)
		case xml.CharData:
			if !blank(t) {
				return nil, errors.New("character data after root element")
			}
		}
	}
}

// rootStart consumes the prolog and returns the root element's start tag.
func rootStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, errors.New("no root element")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.EndElement:
			return xml.StartElement{}, fmt.Errorf("unexpected end element </%s>", t.Name.Local)
		case xml.CharData:
			if !blank(t) {
				return xml.StartElement{}, errors.New("character data before root element")
			}
		}
	}
}

func blank(cd xml.CharData) bool {
	return strings.TrimSpace(string(cd)) == ""
}

// Package xliff implements reading, traversal, and writing of XLIFF-family
// bilingual documents (XLIFF 1.2, memoQ MQXLIFF).
//
// Documents are kept as a generic element tree rather than unmarshalled into
// format structs: CAT tools emit these files under different namespaces and
// with tool-specific extension elements, and the tree must survive a
// read-modify-write cycle with everything it does not understand intact.
// Element lookup is therefore always by local tag name — <trans-unit>,
// <mq:trans-unit> and <xlf:trans-unit> are the same thing here.
package xliff

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// xmlNS is the predeclared namespace of the xml: prefix.
const xmlNS = "http://www.w3.org/XML/1998/namespace"

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Element is a node of the document tree.
//
// Character data is split the ElementTree way: Text is the data between the
// element's start tag and its first child, Tail is the data between this
// element's end tag and the next sibling (it belongs to the parent's content).
type Element struct {
	// Name is the tag name. Space holds the resolved namespace (or the raw
	// prefix when the document never declares it); Local is the part after
	// the colon and is what all lookups use.
	Name xml.Name
	// Attr holds the attributes in document order, xmlns declarations included.
	Attr []xml.Attr
	// Text is the leading character data.
	Text string
	// Children are the child elements in document order.
	Children []*Element
	// Tail is the character data following this element's end tag.
	Tail string
}

// Document is a parsed XLIFF file.
type Document struct {
	// Root is the document element.
	Root *Element
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses an XLIFF document.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse parses XLIFF document data into an element tree.
// Comments and processing instructions are discarded.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			st := t.Copy()
			e := &Element{Name: st.Name, Attr: st.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end element </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue // whitespace outside the root
			}
			cur := stack[len(stack)-1]
			if n := len(cur.Children); n > 0 {
				cur.Children[n-1].Tail += string(t)
			} else {
				cur.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return &Document{Root: root}, nil
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Walk visits e and every descendant in document (pre-)order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// TransUnits returns every <trans-unit> element in the document, at any
// nesting depth, in document order.
func (d *Document) TransUnits() []*Element {
	var units []*Element
	d.Root.Walk(func(e *Element) {
		if e.Name.Local == "trans-unit" {
			units = append(units, e)
		}
	})
	return units
}

// Find returns the first element (pre-order) with the given local tag name,
// or nil.
func (d *Document) Find(local string) *Element {
	var found *Element
	d.Root.Walk(func(e *Element) {
		if found == nil && e.Name.Local == local {
			found = e
		}
	})
	return found
}

// Child returns the first direct child with the given local tag name, or nil.
func (e *Element) Child(local string) *Element {
	for _, c := range e.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// EnsureChild returns the first direct child with the given local tag name,
// creating and appending one (in no namespace) if absent.
func (e *Element) EnsureChild(local string) *Element {
	if c := e.Child(local); c != nil {
		return c
	}
	c := &Element{Name: xml.Name{Local: local}}
	e.Children = append(e.Children, c)
	return c
}

// PlainText returns the concatenated character data of the element and all
// descendants, inline markup stripped: the element's own leading text, then
// for each child its plain text followed by the child's tail.
func (e *Element) PlainText() string {
	var b strings.Builder
	e.plainText(&b)
	return b.String()
}

func (e *Element) plainText(b *strings.Builder) {
	b.WriteString(e.Text)
	for _, c := range e.Children {
		c.plainText(b)
		b.WriteString(c.Tail)
	}
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// SetText replaces the element's entire content with the given text.
// Any inline child elements are removed.
func (e *Element) SetText(s string) {
	e.Text = s
	e.Children = nil
}

// AttrValue returns the value of the first attribute with the given local
// name, regardless of namespace. Returns ("", false) when absent.
func (e *Element) AttrValue(local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == local && a.Name.Space != "xmlns" {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing an existing one with the same name.
// space may be "" for plain attributes or "xml" for xml:-prefixed ones.
func (e *Element) SetAttr(space, local, value string) {
	for i, a := range e.Attr {
		if a.Name.Local == local && sameAttrSpace(a.Name.Space, space) {
			e.Attr[i].Value = value
			return
		}
	}
	e.Attr = append(e.Attr, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
}

// sameAttrSpace treats the "xml" prefix and its predeclared namespace URI as
// equal — the decoder reports whichever form the document used.
func sameAttrSpace(a, b string) bool {
	if a == xmlNS {
		a = "xml"
	}
	if b == xmlNS {
		b = "xml"
	}
	return a == b
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Marshal serializes the document with an XML declaration.
//
// Namespace prefixes are reconstructed from the xmlns declarations carried in
// the tree, so a document parsed and written unchanged keeps its tag spelling.
// Output is deterministic: the same tree always yields the same bytes.
func (d *Document) Marshal() []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	writeElement(&b, d.Root, map[string]string{})
	b.WriteString("\n")
	return []byte(b.String())
}

// WriteFile serializes the document to path, creating missing parent
// directories first.
func (d *Document) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, d.Marshal(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeElement writes e and its subtree. scope maps namespace URI to the
// prefix in effect ("" meaning the default namespace).
func writeElement(b *strings.Builder, e *Element, scope map[string]string) {
	// xmlns declarations on this element open a nested scope.
	for _, a := range e.Attr {
		if isNSDecl(a) {
			scope = cloneScope(scope)
			break
		}
	}
	for _, a := range e.Attr {
		switch {
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope[a.Value] = ""
		case a.Name.Space == "xmlns":
			scope[a.Value] = a.Name.Local
		}
	}

	tag := qualifiedName(e.Name, scope)
	b.WriteString("<")
	b.WriteString(tag)
	for _, a := range e.Attr {
		b.WriteString(" ")
		b.WriteString(attrName(a.Name, scope))
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Value))
		b.WriteString(`"`)
	}

	if e.Text == "" && len(e.Children) == 0 {
		b.WriteString("/>")
		return
	}

	b.WriteString(">")
	b.WriteString(textEscaper.Replace(e.Text))
	for _, c := range e.Children {
		writeElement(b, c, scope)
		b.WriteString(textEscaper.Replace(c.Tail))
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
}

func cloneScope(scope map[string]string) map[string]string {
	next := make(map[string]string, len(scope)+2)
	for k, v := range scope {
		next[k] = v
	}
	return next
}

func isNSDecl(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// qualifiedName spells an element name for output, restoring the prefix its
// namespace is bound to in the current scope.
func qualifiedName(n xml.Name, scope map[string]string) string {
	if n.Space == "" {
		return n.Local
	}
	if prefix, ok := scope[n.Space]; ok {
		if prefix == "" {
			return n.Local
		}
		return prefix + ":" + n.Local
	}
	// The decoder leaves undeclared prefixes in Space verbatim.
	return n.Space + ":" + n.Local
}

// attrName spells an attribute name for output. Unlike elements, unprefixed
// attributes are never in the default namespace.
func attrName(n xml.Name, scope map[string]string) string {
	switch {
	case n.Space == "":
		return n.Local
	case n.Space == "xmlns":
		return "xmlns:" + n.Local
	case n.Space == "xml" || n.Space == xmlNS:
		return "xml:" + n.Local
	}
	if prefix, ok := scope[n.Space]; ok && prefix != "" {
		return prefix + ":" + n.Local
	}
	return n.Space + ":" + n.Local
}

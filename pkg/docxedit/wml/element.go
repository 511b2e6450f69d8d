package wml

import (
	"strconv"

	"github.com/beevik/etree"
)

// Is reports whether e is the element ns:local. Unprefixed elements match
// through a default namespace declaration.
func Is(e *etree.Element, ns, local string) bool {
	if e == nil || e.Tag != local {
		return false
	}
	if p := Prefix(ns); p != "" && e.Space == p {
		return true
	}
	return e.NamespaceURI() == ns
}

// IsW reports whether e is the WordprocessingML element w:local.
func IsW(e *etree.Element, local string) bool {
	return Is(e, NsW, local)
}

// Child returns the first direct child of e that is ns:local.
func Child(e *etree.Element, ns, local string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if Is(c, ns, local) {
			return c
		}
	}
	return nil
}

// ChildW returns the first direct w:local child of e.
func ChildW(e *etree.Element, local string) *etree.Element {
	return Child(e, NsW, local)
}

// ChildrenW returns all direct w:local children of e in document order.
func ChildrenW(e *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	if e == nil {
		return out
	}
	for _, c := range e.ChildElements() {
		if IsW(c, local) {
			out = append(out, c)
		}
	}
	return out
}

// Descendants returns every descendant of e that is ns:local, in document
// order. The walk does not descend into matched elements.
func Descendants(e *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(n *etree.Element) {
		for _, c := range n.ChildElements() {
			if Is(c, ns, local) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	if e != nil {
		walk(e)
	}
	return out
}

// AllDescendants is Descendants in pre-order that also searches inside
// matched elements, so a paragraph in a text box follows the paragraph that
// anchors it.
func AllDescendants(e *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(n *etree.Element) {
		for _, c := range n.ChildElements() {
			if Is(c, ns, local) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if e != nil {
		walk(e)
	}
	return out
}

// Find returns the first descendant of e that is ns:local (depth first).
func Find(e *etree.Element, ns, local string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if Is(c, ns, local) {
			return c
		}
		if f := Find(c, ns, local); f != nil {
			return f
		}
	}
	return nil
}

// Attr returns the value of attribute ns:local on e. An empty ns matches
// unqualified attributes only.
func Attr(e *etree.Element, ns, local string) (string, bool) {
	if e == nil {
		return "", false
	}
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Key != local {
			continue
		}
		if ns == "" {
			if a.Space == "" {
				return a.Value, true
			}
			continue
		}
		if a.Space == Prefix(ns) || (a.Space != "" && a.NamespaceURI() == ns) {
			return a.Value, true
		}
	}
	return "", false
}

// Val returns the w:val attribute of e.
func Val(e *etree.Element) (string, bool) {
	return Attr(e, NsW, "val")
}

// IntAttr parses the w:local attribute of e as an integer.
func IntAttr(e *etree.Element, local string) (int, bool) {
	v, ok := Attr(e, NsW, local)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Toggle reports whether the on/off property element e is switched on.
// Absent val means on; "0", "false", "off" and "none" mean off.
func Toggle(e *etree.Element) bool {
	if e == nil {
		return false
	}
	v, ok := Val(e)
	if !ok {
		return true
	}
	switch v {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// NewW creates a detached w:local element.
func NewW(local string) *etree.Element {
	return etree.NewElement("w:" + local)
}

// AddW appends a new w:local child to parent and returns it.
func AddW(parent *etree.Element, local string) *etree.Element {
	return parent.CreateElement("w:" + local)
}

// AddVal appends <w:local w:val="val"/> to parent.
func AddVal(parent *etree.Element, local, val string) *etree.Element {
	el := AddW(parent, local)
	el.CreateAttr("w:val", val)
	return el
}

// SetW sets the w:key attribute on e.
func SetW(e *etree.Element, key, value string) {
	e.CreateAttr("w:"+key, value)
}

// SetInt sets the w:key attribute on e to an integer value.
func SetInt(e *etree.Element, key string, value int) {
	e.CreateAttr("w:"+key, strconv.Itoa(value))
}

// AddText appends <w:t> holding s to run, marking whitespace significant when
// s has leading or trailing blanks.
func AddText(run *etree.Element, s string) *etree.Element {
	t := AddW(run, "t")
	if s != "" && (s[0] == ' ' || s[len(s)-1] == ' ' || s[0] == '\t' || s[len(s)-1] == '\t') {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(s)
	return t
}

// EnsureNamespace declares xmlns:prefix on root unless the prefix is
// already declared there.
func EnsureNamespace(root *etree.Element, prefix, ns string) {
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Key == prefix {
			return
		}
	}
	root.CreateAttr("xmlns:"+prefix, ns)
}

package dom

import (
	"golang.org/x/net/html"
)

// MutationKind classifies a MutationRecord.
type MutationKind int

const (
	// ChildList records nodes added to or removed from a parent.
	ChildList MutationKind = iota + 1
	// Attributes records an attribute set or removed.
	Attributes
	// CharacterData records a text node whose data changed.
	CharacterData
)

func (k MutationKind) String() string {
	switch k {
	case ChildList:
		return "childList"
	case Attributes:
		return "attributes"
	case CharacterData:
		return "characterData"
	default:
		return "unknown"
	}
}

// MutationRecord describes one change to a node attached to the document.
// Changes to detached nodes are not recorded.
type MutationRecord struct {
	Kind      MutationKind
	Target    *html.Node
	Added     []*html.Node
	Removed   []*html.Node
	Attribute string
	OldValue  string
}

// Observe registers fn to receive a record for every mutation of the
// document, delivered synchronously. Returns a func that stops observing.
func (d *Document) Observe(fn func(MutationRecord)) (stop func()) {
	d.nextObserver++
	id := d.nextObserver
	d.observers[id] = fn
	return func() {
		delete(d.observers, id)
	}
}

func (d *Document) record(r MutationRecord) {
	if len(d.observers) == 0 || !d.Contains(r.Target) {
		return
	}
	for _, fn := range d.observers {
		fn(r)
	}
}

// detach unlinks n from its parent, recording the removal.
func (d *Document) detach(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	parent.RemoveChild(n)
	d.record(MutationRecord{Kind: ChildList, Target: parent, Removed: []*html.Node{n}})
}

// AppendChild appends child to parent, moving it if it is attached
// elsewhere. Appending a fragment moves all its children in one mutation.
func (d *Document) AppendChild(parent, child *html.Node) {
	d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child before ref under parent; a nil ref appends.
// An attached child is moved, keeping its identity, properties and
// listeners.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if child == ref {
		return
	}
	if child.Type == html.DocumentNode {
		added := Children(child)
		if len(added) == 0 {
			return
		}
		for _, c := range added {
			child.RemoveChild(c)
			parent.InsertBefore(c, ref)
		}
		d.record(MutationRecord{Kind: ChildList, Target: parent, Added: added})
		return
	}
	d.detach(child)
	parent.InsertBefore(child, ref)
	d.record(MutationRecord{Kind: ChildList, Target: parent, Added: []*html.Node{child}})
}

// RemoveChild detaches child from parent. It is a no-op when child belongs
// to another parent. The removed subtree loses its form properties and
// listeners.
func (d *Document) RemoveChild(parent, child *html.Node) {
	if child == nil || child.Parent != parent {
		return
	}
	d.detach(child)
	d.release(child)
}

// ReplaceChildren removes every child of n in a single mutation, releasing
// their properties and listeners.
func (d *Document) ReplaceChildren(n *html.Node) {
	removed := Children(n)
	if len(removed) == 0 {
		return
	}
	for _, c := range removed {
		n.RemoveChild(c)
	}
	d.record(MutationRecord{Kind: ChildList, Target: n, Removed: removed})
	for _, c := range removed {
		d.release(c)
	}
}

// release forgets the per-node state of n and its descendants.
func (d *Document) release(n *html.Node) {
	if len(d.props) == 0 && len(d.nodeEvents) == 0 {
		return
	}
	delete(d.props, n)
	delete(d.nodeEvents, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.release(c)
	}
}

// SetText replaces the text of n: the data of a text or comment node, or
// the children of an element with a single text node.
func (d *Document) SetText(n *html.Node, text string) {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		if n.Data == text {
			return
		}
		old := n.Data
		n.Data = text
		d.record(MutationRecord{Kind: CharacterData, Target: n, OldValue: old})
	case html.ElementNode, html.DocumentNode:
		d.ReplaceChildren(n)
		if text == "" {
			return
		}
		d.AppendChild(n, NewText(text))
	}
}

// SetAttribute sets name=value on n. Writing the current value is a no-op
// and records nothing.
func (d *Document) SetAttribute(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if AttrName(a) != name {
			continue
		}
		if a.Val == value {
			return
		}
		n.Attr[i].Val = value
		d.record(MutationRecord{Kind: Attributes, Target: n, Attribute: name, OldValue: a.Val})
		return
	}
	namespace, key := splitName(name)
	n.Attr = append(n.Attr, html.Attribute{Namespace: namespace, Key: key, Val: value})
	d.record(MutationRecord{Kind: Attributes, Target: n, Attribute: name})
}

// RemoveAttribute removes name from n if present.
func (d *Document) RemoveAttribute(n *html.Node, name string) {
	for i, a := range n.Attr {
		if AttrName(a) != name {
			continue
		}
		n.Attr = append(n.Attr[:i:i], n.Attr[i+1:]...)
		d.record(MutationRecord{Kind: Attributes, Target: n, Attribute: name, OldValue: a.Val})
		return
	}
}

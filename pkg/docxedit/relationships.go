package docxedit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit/wml"
)

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// Relationships is the relationship set of one part. It is backed by the
// cached tree of the part's .rels entry, so additions are saved with the
// package.
type Relationships struct {
	owner  string
	name   string
	pkg    *Package
	doc    *etree.Document
	byID   map[string]Relationship
	order  []string
	prefix string
	next   int
}

// Relationships returns the relationship set of partName. A part without a
// .rels entry has an empty set; the entry is created on the first Add.
func (p *Package) Relationships(partName string) (*Relationships, error) {
	if rels, ok := p.rels[partName]; ok {
		return rels, nil
	}

	rels := &Relationships{
		owner:  partName,
		name:   relsPartName(partName),
		pkg:    p,
		byID:   make(map[string]Relationship),
		prefix: GetGlobalConfig().RelIDPrefix,
		next:   1,
	}

	if p.Has(rels.name) {
		doc, err := p.ReadPart(rels.name)
		if err != nil {
			return nil, err
		}
		root := doc.Root()
		if root.Tag != "Relationships" {
			return nil, formatErr("parse relationships", rels.name, fmt.Errorf("unexpected root <%s>", root.FullTag()))
		}
		rels.doc = doc
		for _, el := range root.ChildElements() {
			if el.Tag != "Relationship" {
				continue
			}
			rel := Relationship{
				ID:         el.SelectAttrValue("Id", ""),
				Type:       el.SelectAttrValue("Type", ""),
				Target:     el.SelectAttrValue("Target", ""),
				TargetMode: el.SelectAttrValue("TargetMode", ""),
			}
			if rel.ID == "" {
				return nil, formatErr("parse relationships", rels.name, fmt.Errorf("relationship without Id"))
			}
			if _, dup := rels.byID[rel.ID]; dup {
				return nil, formatErr("parse relationships", rels.name, fmt.Errorf("duplicate relationship id %q", rel.ID))
			}
			rels.byID[rel.ID] = rel
			rels.order = append(rels.order, rel.ID)
			rels.observe(rel.ID)
		}
	}

	p.rels[partName] = rels
	return rels, nil
}

// observe advances the counter past a numeric id carrying the prefix.
func (r *Relationships) observe(id string) {
	if !strings.HasPrefix(id, r.prefix) {
		return
	}
	if n, err := strconv.Atoi(id[len(r.prefix):]); err == nil && n >= r.next {
		r.next = n + 1
	}
}

// Get returns the relationship with the given id.
func (r *Relationships) Get(id string) (Relationship, bool) {
	rel, ok := r.byID[id]
	return rel, ok
}

// Target returns the target of id.
func (r *Relationships) Target(id string) (string, bool) {
	rel, ok := r.byID[id]
	return rel.Target, ok
}

// Resolve returns the archive entry an internal relationship points at.
func (r *Relationships) Resolve(id string) (string, bool) {
	rel, ok := r.byID[id]
	if !ok || rel.TargetMode == "External" {
		return "", false
	}
	return resolveTarget(r.owner, rel.Target), true
}

// Map returns the id→target mapping.
func (r *Relationships) Map() map[string]string {
	m := make(map[string]string, len(r.byID))
	for id, rel := range r.byID {
		m[id] = rel.Target
	}
	return m
}

// All returns the relationships in document order.
func (r *Relationships) All() []Relationship {
	out := make([]Relationship, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of relationships.
func (r *Relationships) Len() int {
	return len(r.order)
}

// NextID mints an id absent from the set. Ids are the prefix followed by a
// counter that starts past the highest numeric id seen.
func (r *Relationships) NextID() string {
	for {
		id := r.prefix + strconv.Itoa(r.next)
		r.next++
		if _, taken := r.byID[id]; !taken {
			return id
		}
	}
}

// Add appends a relationship with a freshly minted id and returns the id.
func (r *Relationships) Add(relType, target string) (string, error) {
	doc, err := r.tree()
	if err != nil {
		return "", err
	}

	id := r.NextID()
	el := doc.Root().CreateElement("Relationship")
	el.CreateAttr("Id", id)
	el.CreateAttr("Type", relType)
	el.CreateAttr("Target", target)

	r.byID[id] = Relationship{ID: id, Type: relType, Target: target}
	r.order = append(r.order, id)

	GetLogger().Debug("added relationship", "part", r.owner, "id", id, "target", target)
	return id, nil
}

// tree returns the .rels tree for mutation, creating the entry if needed.
func (r *Relationships) tree() (*etree.Document, error) {
	if r.doc == nil {
		doc := etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		doc.CreateElement("Relationships").CreateAttr("xmlns", wml.NsRels)
		r.pkg.SetPart(r.name, doc)
		r.doc = doc
		return doc, nil
	}
	// fetching marks the part touched
	return r.pkg.Part(r.name)
}

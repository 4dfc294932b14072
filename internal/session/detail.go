package session

import "github.com/matsen/citegraph/internal/graph"

// Detail describes a node together with its direct neighbors in the model.
// Paper details fill Authors, References and CitedBy; author details fill
// Papers. Unresolved references are listed by id only.
type Detail struct {
	Node       graph.Node   `json:"node"`
	Authors    []graph.Node `json:"authors,omitempty"`
	Papers     []graph.Node `json:"papers,omitempty"`
	References []graph.Node `json:"references,omitempty"`
	CitedBy    []graph.Node `json:"citedBy,omitempty"`
	Unresolved []string     `json:"unresolved,omitempty"`
}

// Detail returns the node with the given id and its neighbors.
func (c *Controller) Detail(id string) (Detail, bool) {
	m := c.Model()

	n, ok := m.Lookup(id)
	if !ok {
		return Detail{}, false
	}
	d := Detail{Node: n}

	if n.IsAuthor() {
		for _, e := range m.Outgoing(id) {
			if p, ok := m.Lookup(e.Target); ok && e.Relation == graph.RelationAuthored && p.IsPaper() {
				d.Papers = append(d.Papers, p)
			}
		}
		return d, true
	}

	for _, e := range m.Incoming(id) {
		src, ok := m.Lookup(e.Source)
		if !ok {
			continue
		}
		switch e.Relation {
		case graph.RelationAuthored:
			d.Authors = append(d.Authors, src)
		case graph.RelationCites:
			d.CitedBy = append(d.CitedBy, src)
		}
	}
	for _, e := range m.Outgoing(id) {
		if e.Relation != graph.RelationCites {
			continue
		}
		if ref, ok := m.Lookup(e.Target); ok && ref.IsPaper() {
			d.References = append(d.References, ref)
		} else {
			d.Unresolved = append(d.Unresolved, e.Target)
		}
	}
	return d, true
}

package graph

// Subgraph is a derived view of the model. It owns its slices; building one
// never touches the model.
type Subgraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"links"`
}

// Empty returns a subgraph with no nodes or edges.
func Empty() *Subgraph {
	return &Subgraph{Nodes: []Node{}, Edges: []Edge{}}
}

// IsEmpty returns true if the subgraph has no nodes.
func (s *Subgraph) IsEmpty() bool {
	return len(s.Nodes) == 0
}

// NodeIDs returns the set of node ids in the subgraph.
func (s *Subgraph) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// Contains reports whether the subgraph has a node with the given id.
func (s *Subgraph) Contains(id string) bool {
	for _, n := range s.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Induced keeps the nodes accepted by keep, in their original order, and
// the edges whose endpoints are both kept and have the kinds the relation
// requires.
func Induced(nodes []Node, edges []Edge, keep func(Node) bool) *Subgraph {
	kept := make(map[string]Node)
	sg := Empty()
	for _, n := range nodes {
		if keep(n) {
			kept[n.ID] = n
			sg.Nodes = append(sg.Nodes, n)
		}
	}
	sg.Edges = EdgesWithin(edges, kept)
	return sg
}

// EdgesWithin returns the edges whose source and target are both in nodes
// and whose endpoint kinds are valid for the relation.
func EdgesWithin(edges []Edge, nodes map[string]Node) []Edge {
	out := []Edge{}
	for _, e := range edges {
		src, ok := nodes[e.Source]
		if !ok {
			continue
		}
		dst, ok := nodes[e.Target]
		if !ok {
			continue
		}
		if !ValidEndpoints(e.Relation, src, dst) {
			continue
		}
		out = append(out, e)
	}
	return out
}

package viz

import (
	"encoding/json"
	"fmt"

	"github.com/matsen/citegraph/internal/graph"
)

// FromSubgraph converts a subgraph into the renderer payload.
func FromSubgraph(sg *graph.Subgraph) *GraphData {
	data := &GraphData{
		Nodes: make([]graph.Node, 0, len(sg.Nodes)),
		Links: make([]Link, 0, len(sg.Edges)),
	}
	data.Nodes = append(data.Nodes, sg.Nodes...)
	for _, e := range sg.Edges {
		data.Links = append(data.Links, Link{
			Source:   Endpoint(e.Source),
			Target:   Endpoint(e.Target),
			Relation: e.Relation,
			Type:     e.Relation.DisplayType(),
		})
	}
	return data
}

// Subgraph converts the payload back into a subgraph. Endpoints are already
// resolved to ids; the display type is rederived from the relation.
func (g *GraphData) Subgraph() *graph.Subgraph {
	sg := graph.Empty()
	sg.Nodes = append(sg.Nodes, g.Nodes...)
	for _, l := range g.Links {
		sg.Edges = append(sg.Edges, graph.NewEdge(string(l.Source), string(l.Target), l.relation()))
	}
	return sg
}

// relation falls back to the display type for links that lost their
// relation field on the client.
func (l Link) relation() graph.Relation {
	if l.Relation != "" {
		return l.Relation
	}
	switch l.Type {
	case graph.TypeAuthorship:
		return graph.RelationAuthored
	case graph.TypeCitation:
		return graph.RelationCites
	}
	return ""
}

// ToJSON encodes the payload for embedding in a page or a websocket frame.
func (g *GraphData) ToJSON() (string, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("marshaling graph data to JSON: %w", err)
	}
	return string(b), nil
}

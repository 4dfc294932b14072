// Package viz shapes subgraphs for the 3D force-graph renderer and builds
// the page that hosts it.
package viz

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matsen/citegraph/internal/graph"
)

// GraphData is the renderer payload: nodes plus links whose endpoints the
// renderer replaces with node objects after the first frame.
type GraphData struct {
	Nodes []graph.Node `json:"nodes"`
	Links []Link       `json:"links"`
}

// Link is an edge as the renderer sees it.
type Link struct {
	Source   Endpoint       `json:"source"`
	Target   Endpoint       `json:"target"`
	Relation graph.Relation `json:"relation"`
	Type     string         `json:"type"`
}

// Endpoint is a link end. It always marshals to the bare node id but
// unmarshals from either an id string or an object carrying an "id" field.
type Endpoint string

// UnmarshalJSON accepts "P1" as well as {"id": "P1", ...}.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID *string `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("decoding link endpoint object: %w", err)
		}
		if obj.ID == nil {
			return fmt.Errorf("link endpoint object has no id")
		}
		*e = Endpoint(*obj.ID)
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("link endpoint must be an id or an object with an id: %w", err)
	}
	*e = Endpoint(id)
	return nil
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// ForceGraphURL is the 3d-force-graph bundle loaded by the page.
const ForceGraphURL = "https://unpkg.com/3d-force-graph@1/dist/3d-force-graph.min.js"

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title  string
	Layout string // "force", "td", "lr" or "radialout"

	// LiveURL, when set, is the websocket path the page subscribes to for
	// view updates. Clicking a node then asks the server to expand it.
	LiveURL string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Title:  "Citation Graph",
		Layout: "force",
	}
}

// ValidLayouts lists the supported layout names.
var ValidLayouts = []string{"force", "td", "lr", "radialout"}

// GenerateHTML generates a self-contained HTML page rendering data with
// 3d-force-graph and showing legend alongside it.
func GenerateHTML(data *GraphData, legend Legend, opts HTMLOptions) (string, error) {
	if data == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	if data.IsEmpty() && opts.LiveURL == "" {
		return generateEmptyHTML(), nil
	}

	graphJSON, err := data.ToJSON()
	if err != nil {
		return "", err
	}
	legendJSON, err := json.Marshal(legend)
	if err != nil {
		return "", fmt.Errorf("marshaling legend to JSON: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = DefaultOptions().Title
	}

	var buf bytes.Buffer
	err = compiledTemplate.Execute(&buf, templateData{
		Title:      title,
		ScriptURL:  ForceGraphURL,
		GraphJSON:  template.JS(graphJSON),
		LegendJSON: template.JS(legendJSON),
		DAGMode:    dagMode(opts.Layout),
		LiveURL:    opts.LiveURL,
	})
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}

func validateLayout(layout string) error {
	switch layout {
	case "", "force", "td", "lr", "radialout":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be one of %v", layout, ValidLayouts)
	}
}

// dagMode maps a layout name to the renderer's dagMode; free force layout
// has none.
func dagMode(layout string) string {
	switch layout {
	case "td", "lr", "radialout":
		return layout
	default:
		return ""
	}
}

type templateData struct {
	Title      string
	ScriptURL  string
	GraphJSON  template.JS
	LegendJSON template.JS
	DAGMode    string
	LiveURL    string
}

func generateEmptyHTML() string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Citation Graph - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #05060f;
      color: #aab;
    }
    code {
      background: #223;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div>
    <h2>No graph data</h2>
    <p>The current filters match no papers.</p>
    <p>Widen them with <code>cg filter --years 1900:</code></p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #05060f;
      color: #dde;
    }
    #graph {
      width: 100vw;
      height: 100vh;
    }
    #legend {
      position: absolute;
      top: 12px;
      right: 12px;
      background: rgba(20, 22, 40, 0.85);
      border-radius: 6px;
      padding: 10px 14px;
      font-size: 13px;
      min-width: 180px;
    }
    #legend h4 {
      margin: 8px 0 4px;
      font-size: 11px;
      text-transform: uppercase;
      color: #889;
    }
    #legend div {
      margin: 2px 0;
    }
  </style>
</head>
<body>
  <div id="graph"></div>
  <div id="legend"></div>
  <script>
    (function() {
      const initialData = {{.GraphJSON}};
      const initialLegend = {{.LegendJSON}};
      const dagMode = "{{.DAGMode}}";
      const liveURL = "{{.LiveURL}}";

      const yearColors = ["#3366cc", "#66b3e6", "#e6b34c", "#f08a4b"];

      function paperColor(node, legend) {
        const years = legend.years || [];
        for (let i = 0; i < years.length; i++) {
          if (node.year >= years[i].start && node.year <= years[i].end) {
            return yearColors[i % yearColors.length];
          }
        }
        return yearColors[0];
      }

      function escapeHtml(str) {
        const div = document.createElement('div');
        div.textContent = str == null ? '' : String(str);
        return div.innerHTML;
      }

      function nodeLabel(node) {
        if (node.type === 'author') {
          return '<b>' + escapeHtml(node.name) + '</b><br>' + (node.paperCount || 0) + ' papers';
        }
        return '<b>' + escapeHtml(node.title) + '</b><br>' + node.year +
          ' &middot; ' + (node.citationCount || 0) + ' citations';
      }

      function renderLegend(legend) {
        let html = '<h4>Nodes (' + legend.nodes + ')</h4>' +
          '<div>Papers: ' + legend.papers + '</div>' +
          '<div>Authors: ' + legend.authors + '</div>' +
          '<h4>Papers by year</h4>';
        (legend.years || []).forEach(function(b, i) {
          html += '<div><span style="color:' + yearColors[i % yearColors.length] + '">&#9679;</span> ' +
            escapeHtml(b.label) + ': ' + b.count + '</div>';
        });
        html += '<h4>Links (' + legend.links + ')</h4>' +
          '<div>Citations: ' + legend.citations + '</div>' +
          '<div>Authorships: ' + legend.authorships + '</div>';
        document.getElementById('legend').innerHTML = html;
      }

      let legend = initialLegend;

      const Graph = ForceGraph3D()(document.getElementById('graph'))
        .backgroundColor('#05060f')
        .nodeId('id')
        .nodeLabel(nodeLabel)
        .nodeVal(function(node) {
          return node.type === 'author' ? 1 + (node.paperCount || 0) : 1 + Math.log1p(node.citationCount || 0);
        })
        .nodeColor(function(node) {
          return node.type === 'author' ? '#c864ff' : paperColor(node, legend);
        })
        .linkColor(function(link) {
          return link.type === 'citation' ? '#ff8844' : '#6688aa';
        })
        .linkDirectionalArrowLength(function(link) {
          return link.type === 'citation' ? 3 : 0;
        })
        .linkDirectionalArrowRelPos(1);

      if (dagMode) {
        Graph.dagMode(dagMode);
      }

      Graph.graphData(initialData);
      renderLegend(legend);

      if (liveURL) {
        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const socket = new WebSocket(scheme + location.host + liveURL);
        socket.onmessage = function(evt) {
          const msg = JSON.parse(evt.data);
          if (msg.type !== 'view') {
            return;
          }
          const view = msg.payload;
          legend = view.legend;
          Graph.graphData(view.graph);
          renderLegend(legend);
        };

        Graph.onNodeClick(function(node) {
          const kind = node.type === 'author' ? 'author' : 'paper';
          fetch('/api/expand/' + kind + '/' + encodeURIComponent(node.id), { method: 'POST' });
        });
        Graph.onBackgroundClick(function() {
          fetch('/api/reset', { method: 'POST' });
        });
      }
    })();
  </script>
</body>
</html>
`

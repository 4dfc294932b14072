package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matsen/citegraph/internal/dataset"
	"github.com/matsen/citegraph/internal/filter"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel(t *testing.T) *graph.Model {
	t.Helper()
	m, err := graph.Normalize([]dataset.Paper{
		{
			PaperID: "P1", Title: "Deep Residual Learning", Year: 2018, CitationCount: 50,
			Datasets:   []string{"ImageNet", "CIFAR-10"},
			Authors:    []dataset.Author{{AuthorID: "A1", Name: "Ann"}, {AuthorID: "A2", Name: "Bob"}},
			References: []string{"P2"},
		},
		{
			PaperID: "P2", Title: "Vision Transformers", Year: 2020, CitationCount: 5,
			Datasets: []string{"ImageNet"},
			Authors:  []dataset.Author{{AuthorID: "A1", Name: "Ann"}},
		},
		{
			PaperID: "P3", Title: "Gradient Boosting", Year: 2015, CitationCount: 120,
			Authors:    []dataset.Author{{AuthorID: "A3", Name: "Cy"}},
			References: []string{"P1"},
		},
	})
	require.NoError(t, err)
	return m
}

type testEnv struct {
	ctrl *session.Controller
	srv  *Server
	http *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctrl, err := session.New(sampleModel(t), session.WithLogger(logger))
	require.NoError(t, err)

	srv := New(ctrl,
		WithLogger(logger),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }))

	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		cancel()
		srv.Close()
		ctrl.Close()
	})
	return &testEnv{ctrl: ctrl, srv: srv, http: ts}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeView(t *testing.T, data []byte) session.View {
	t.Helper()
	var v session.View
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func nodeIDs(nodes []graph.Node) []string {
	out := []string{}
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "ForceGraph3D()")
	assert.Contains(t, string(body), `"id":"P1"`)

	resp, _ = env.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGraph(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/graph", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	v := decodeView(t, body)
	assert.Equal(t, session.ModeFilter, v.Mode)
	assert.Len(t, v.Graph.Nodes, 6)
	assert.Contains(t, string(body), `"links"`)
}

func TestFilters(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		body      string
		wantNodes []string
		wantOpen  bool
	}{
		{
			name:      "year window",
			body:      `{"years": {"min": 2019, "max": 2021}}`,
			wantNodes: []string{"P2", "A1"},
			wantOpen:  true,
		},
		{
			name:      "max at ceiling is open",
			body:      `{"citations": {"min": 10, "max": 120}}`,
			wantNodes: []string{"P1", "P3", "A1", "A2", "A3"},
			wantOpen:  true,
		},
		{
			name:      "closed citation range",
			body:      `{"citations": {"min": 10, "max": 60}}`,
			wantNodes: []string{"P1", "A1", "A2"},
		},
		{
			name:      "inverted range is empty",
			body:      `{"citations": {"min": 60, "max": 10}}`,
			wantNodes: []string{},
		},
		{
			name:      "dataset",
			body:      `{"dataset": "cifar"}`,
			wantNodes: []string{"P1", "A1", "A2"},
			wantOpen:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/filters", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			v := decodeView(t, body)
			assert.Equal(t, tt.wantNodes, nodeIDs(v.Graph.Nodes))
			assert.Equal(t, tt.wantOpen, v.Criteria.Citations.Open)
		})
	}
}

func TestFilterRequest_ResolvesAgainstGivenStats(t *testing.T) {
	req := filterRequest{Citations: &filter.CitationRange{Min: 10, Max: 120}}

	c, err := req.criteria(graph.Stats{MinYear: 2015, MaxYear: 2020, MaxCitationCount: 120, Papers: 3})
	require.NoError(t, err)
	assert.True(t, c.Citations.Open)
	assert.Equal(t, filter.Range{Min: 2015, Max: 2020}, c.Years)

	c, err = req.criteria(graph.Stats{MinYear: 2015, MaxYear: 2030, MaxCitationCount: 900, Papers: 4})
	require.NoError(t, err)
	assert.False(t, c.Citations.Open)
	assert.Equal(t, filter.Range{Min: 2015, Max: 2030}, c.Years)

	_, err = filterRequest{Relation: "likes"}.criteria(graph.Stats{})
	assert.Error(t, err)
}

func TestFilters_AfterReloadUseNewModel(t *testing.T) {
	env := newTestEnv(t)

	m, err := graph.Normalize([]dataset.Paper{
		{PaperID: "P1", Title: "Deep Residual Learning", Year: 2018, CitationCount: 50},
		{PaperID: "P9", Title: "Later Work", Year: 2030, CitationCount: 900},
	})
	require.NoError(t, err)
	env.ctrl.Reload(m)

	resp, body := env.do(t, http.MethodPost, "/api/filters", `{"citations": {"min": 10, "max": 120}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	v := decodeView(t, body)
	assert.Equal(t, []string{"P1"}, nodeIDs(v.Graph.Nodes))
	assert.False(t, v.Criteria.Citations.Open)
	assert.Equal(t, filter.Range{Min: 2018, Max: 2030}, v.Criteria.Years)
}

func TestFilters_BadRequest(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{`, `{"relation": "likes"}`} {
		resp, data := env.do(t, http.MethodPost, "/api/filters", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(data), `"error"`)
	}

	resp, _ := env.do(t, http.MethodGet, "/api/filters", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestReset(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/filters", `{"years": {"min": 2030, "max": 2031}}`)

	resp, body := env.do(t, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeView(t, body).Graph.Nodes, 6)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/search?q=ann&scope=authors", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sr SearchResponse
	require.NoError(t, json.Unmarshal(body, &sr))
	assert.Equal(t, []string{"A1"}, nodeIDs(sr.Results))

	_, body = env.do(t, http.MethodGet, "/api/search?q=a", "")
	require.NoError(t, json.Unmarshal(body, &sr))
	assert.NotNil(t, sr.Results)
	assert.Empty(t, sr.Results)

	resp, _ = env.do(t, http.MethodGet, "/api/search?q=ann&scope=venues", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExpand(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/expand/paper/P2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, body)
	assert.Equal(t, session.ModeExpandPaper, v.Mode)
	assert.Equal(t, []string{"P1", "P2", "A1"}, nodeIDs(v.Graph.Nodes))

	resp, body = env.do(t, http.MethodPost, "/api/expand/author/A3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"P3", "A3"}, nodeIDs(decodeView(t, body).Graph.Nodes))

	resp, _ = env.do(t, http.MethodPost, "/api/expand/author/P1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/expand/paper/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Failed expansions leave the view alone.
	assert.Equal(t, session.ModeExpandAuthor, env.ctrl.Current().Mode)
}

func TestNode(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/nodes/P1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var d session.Detail
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "Deep Residual Learning", d.Node.Title)
	assert.Equal(t, []string{"A1", "A2"}, nodeIDs(d.Authors))
	assert.Equal(t, []string{"P3"}, nodeIDs(d.CitedBy))

	resp, _ = env.do(t, http.MethodGet, "/api/nodes/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sr StatsResponse
	require.NoError(t, json.Unmarshal(body, &sr))
	assert.Equal(t, 2015, sr.Stats.MinYear)
	assert.Equal(t, 2020, sr.Stats.MaxYear)
	assert.Equal(t, 120, sr.Stats.MaxCitationCount)
	assert.Equal(t, 3, sr.Legend.Papers)
	assert.Equal(t, 175, sr.Citations.Total)
	require.NotEmpty(t, sr.TopDatasets)
	assert.Equal(t, "ImageNet", sr.TopDatasets[0].Dataset)
	assert.Equal(t, 2, sr.TopDatasets[0].Papers)
}

func TestTrending(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/trending?n=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tr TrendingResponse
	require.NoError(t, json.Unmarshal(body, &tr))
	assert.Equal(t, 2025, tr.Year)
	// P1: 50/7, P3: 120/10, P2: 5/5.
	assert.Equal(t, []string{"P3", "P1"}, nodeIDs(tr.Papers))
	assert.Equal(t, []string{"A1", "A2"}, nodeIDs(tr.Authors))

	resp, _ = env.do(t, http.MethodGet, "/api/trending?n=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDatasetAnalytics(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/analytics/datasets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dr DatasetAnalyticsResponse
	require.NoError(t, json.Unmarshal(body, &dr))
	assert.Equal(t, []string{"ImageNet", "CIFAR-10"}, dr.Datasets)
	require.Len(t, dr.Cooccurrence, 1)
	assert.Equal(t, 1, dr.Cooccurrence[0].Papers)
	require.NotEmpty(t, dr.Authors)
	assert.Equal(t, "Ann", dr.Authors[0].Author)

	_, body = env.do(t, http.MethodGet, "/api/analytics/datasets?datasets=CIFAR-10", "")
	require.NoError(t, json.Unmarshal(body, &dr))
	assert.Equal(t, []string{"CIFAR-10"}, dr.Datasets)
	require.Len(t, dr.Collaborations, 1)
	assert.Equal(t, 1, dr.Collaborations[0].SharedPapers)
}

func TestWebSocketFeed(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readView := func() session.View {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg struct {
			Type    string       `json:"type"`
			Payload session.View `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, MessageView, msg.Type)
		return msg.Payload
	}

	greeting := readView()
	assert.Equal(t, session.ModeFilter, greeting.Mode)
	assert.Len(t, greeting.Graph.Nodes, 6)

	require.Eventually(t, func() bool { return env.srv.hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	resp, _ := env.do(t, http.MethodPost, "/api/expand/author/A2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pushed := readView()
	assert.Equal(t, session.ModeExpandAuthor, pushed.Mode)
	assert.Equal(t, "A2", pushed.Focus)
}

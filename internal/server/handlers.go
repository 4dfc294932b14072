package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/matsen/citegraph/internal/analytics"
	"github.com/matsen/citegraph/internal/filter"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/search"
	"github.com/matsen/citegraph/internal/viz"
)

const (
	defaultTrendingCount = 10
	maxTrendingCount     = 100
	topDatasetCount      = 10
	focusDatasetCount    = 5
	analyticsRowLimit    = 20
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchResponse is the result of GET /api/search.
type SearchResponse struct {
	Query   string       `json:"query"`
	Scope   search.Scope `json:"scope"`
	Results []graph.Node `json:"results"`
}

// StatsResponse is the result of GET /api/stats.
type StatsResponse struct {
	Stats           graph.Stats               `json:"stats"`
	Legend          viz.Legend                `json:"legend"`
	Citations       analytics.CitationSummary `json:"citations"`
	YearCorrelation float64                   `json:"yearCitationCorrelation"`
	TopDatasets     []analytics.DatasetUsage  `json:"topDatasets"`
}

// TrendingResponse is the result of GET /api/trending.
type TrendingResponse struct {
	Year    int          `json:"year"`
	Papers  []graph.Node `json:"papers"`
	Authors []graph.Node `json:"authors"`
}

// DatasetAnalyticsResponse is the result of GET /api/analytics/datasets.
type DatasetAnalyticsResponse struct {
	Datasets       []string                  `json:"datasets"`
	Top            []analytics.DatasetUsage  `json:"top"`
	Cooccurrence   []analytics.DatasetPair   `json:"cooccurrence"`
	Trend          []analytics.YearUsage     `json:"trend"`
	Authors        []analytics.AuthorUsage   `json:"authors"`
	Collaborations []analytics.Collaboration `json:"collaborations"`
	MostCited      []analytics.CitedPaper    `json:"mostCited"`
}

// filterRequest is the body of POST /api/filters. Omitted fields take the
// model defaults.
type filterRequest struct {
	Years     *filter.Range         `json:"years"`
	Citations *filter.CitationRange `json:"citations"`
	Relation  string                `json:"relation"`
	Dataset   string                `json:"dataset"`
	Text      string                `json:"text"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, format string, args ...any) {
	s.writeJSON(w, status, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v := s.ctrl.Current()
	page, err := viz.GenerateHTML(viz.FromSubgraph(v.Graph), v.Legend, viz.HTMLOptions{
		Title:   "Citation Graph",
		Layout:  "force",
		LiveURL: "/ws",
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "rendering page: %v", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Current())
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid filter request: %v", err)
		return
	}

	view, err := s.ctrl.ApplyFiltersWith(req.criteria)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// criteria resolves the request against the model defaults for stats.
func (req filterRequest) criteria(stats graph.Stats) (filter.Criteria, error) {
	c := filter.Defaults(stats)
	if req.Years != nil {
		c.Years = *req.Years
	}
	if req.Citations != nil {
		if req.Citations.Open {
			c.Citations = filter.AtLeast(req.Citations.Min)
		} else {
			c.Citations = filter.NewCitationRange(req.Citations.Min, req.Citations.Max, stats.MaxCitationCount)
		}
	}
	rel, err := filter.ParseRelation(req.Relation)
	if err != nil {
		return c, err
	}
	c.Relation = rel
	c.Dataset = req.Dataset
	c.Text = req.Text
	return c, nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.ResetFilters())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope, err := search.ParseScope(q.Get("scope"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	query := q.Get("q")
	s.writeJSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Scope:   scope,
		Results: s.ctrl.Search(query, scope),
	})
}

func (s *Server) handleExpandPaper(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, ok := s.ctrl.ExpandFromPaper(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "paper not found: %s", id)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleExpandAuthor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, ok := s.ctrl.ExpandFromAuthor(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "author not found: %s", id)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, ok := s.ctrl.Detail(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "node not found: %s", id)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	m := s.ctrl.Model()
	nodes := m.Nodes()

	db, err := s.analyticsDB(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "building analytics: %v", err)
		return
	}
	top, err := db.TopDatasets(r.Context(), topDatasetCount)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	s.writeJSON(w, http.StatusOK, StatsResponse{
		Stats:           m.Stats(),
		Legend:          viz.ComputeLegend(m.Full(), m.Stats()),
		Citations:       analytics.SummarizeCitations(nodes),
		YearCorrelation: analytics.CitationYearCorrelation(nodes),
		TopDatasets:     top,
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	n := defaultTrendingCount
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxTrendingCount {
			s.writeError(w, http.StatusBadRequest, "n must be between 1 and %d", maxTrendingCount)
			return
		}
		n = v
	}

	nodes := s.ctrl.Model().Nodes()
	year := s.now().Year()
	s.writeJSON(w, http.StatusOK, TrendingResponse{
		Year:    year,
		Papers:  search.Trending(nodes, year, n),
		Authors: search.TopAuthors(nodes, n),
	})
}

func (s *Server) handleDatasetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	db, err := s.analyticsDB(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "building analytics: %v", err)
		return
	}

	resp := DatasetAnalyticsResponse{}
	if resp.Top, err = db.TopDatasets(ctx, topDatasetCount); err != nil {
		s.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	// Focus on the requested datasets, or the most used ones.
	if raw := r.URL.Query().Get("datasets"); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				resp.Datasets = append(resp.Datasets, d)
			}
		}
	} else {
		for i := 0; i < len(resp.Top) && i < focusDatasetCount; i++ {
			resp.Datasets = append(resp.Datasets, resp.Top[i].Dataset)
		}
	}
	if resp.Datasets == nil {
		resp.Datasets = []string{}
	}

	if resp.Cooccurrence, err = db.DatasetCooccurrence(ctx, analyticsRowLimit); err != nil {
		s.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	if resp.Trend, err = db.DatasetTrend(ctx, resp.Datasets); err != nil {
		s.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	if resp.Authors, err = db.TopAuthorsForDatasets(ctx, resp.Datasets, analyticsRowLimit); err != nil {
		s.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	if resp.Collaborations, err = db.Collaborations(ctx, resp.Datasets, analyticsRowLimit); err != nil {
		s.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	if resp.MostCited, err = db.MostCited(ctx, topDatasetCount); err != nil {
		s.writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// Package session owns the explorer's mutable state: the loaded model, the
// active filter criteria and the view currently shown to the renderer.
package session

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/matsen/citegraph/internal/expand"
	"github.com/matsen/citegraph/internal/filter"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/search"
	"github.com/matsen/citegraph/internal/textindex"
	"github.com/matsen/citegraph/internal/viz"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSearchCacheSize is the number of memoized search results kept.
const DefaultSearchCacheSize = 256

// Mode names how the current view was produced.
type Mode string

// View modes.
const (
	ModeFilter       Mode = "filter"
	ModeExpandPaper  Mode = "expand-paper"
	ModeExpandAuthor Mode = "expand-author"
)

// View is the visible subgraph plus the aggregates shown beside it.
type View struct {
	Mode       Mode            `json:"mode"`
	Focus      string          `json:"focus,omitempty"`
	Criteria   filter.Criteria `json:"criteria"`
	Graph      *graph.Subgraph `json:"graph"`
	Legend     viz.Legend      `json:"legend"`
	Generation uint64          `json:"generation"`
}

type searchKey struct {
	generation uint64
	scope      search.Scope
	query      string
}

// Controller is the single owner of session state. All methods are safe for
// concurrent use; concurrent updates are applied in arrival order and the
// last one wins.
type Controller struct {
	mu         sync.RWMutex
	model      *graph.Model
	text       *textindex.Index
	generation uint64
	criteria   filter.Criteria
	view       View

	cache *lru.Cache[searchKey, []graph.Node]

	subMu  sync.Mutex
	subs   map[int]chan View
	nextID int

	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*config)

type config struct {
	cacheSize int
	logger    *slog.Logger
}

// WithSearchCacheSize sets how many search results are memoized.
func WithSearchCacheSize(n int) Option {
	return func(c *config) {
		c.cacheSize = n
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// New creates a controller showing the whole of m.
func New(m *graph.Model, opts ...Option) (*Controller, error) {
	cfg := config{cacheSize: DefaultSearchCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cacheSize <= 0 {
		cfg.cacheSize = DefaultSearchCacheSize
	}

	cache, err := lru.New[searchKey, []graph.Node](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating search cache: %w", err)
	}

	c := &Controller{
		cache:  cache,
		subs:   make(map[int]chan View),
		logger: cfg.logger,
	}
	c.install(m)
	c.criteria = filter.Defaults(m.Stats())
	c.view = c.filterView(c.criteria)
	return c, nil
}

// install swaps in a model and its text index. Callers hold mu.
func (c *Controller) install(m *graph.Model) {
	if c.text != nil {
		c.text.Close()
		c.text = nil
	}

	idx, err := textindex.Build(m.Papers())
	if err != nil {
		c.logger.Warn("text index unavailable, using substring match", "error", err)
	} else {
		c.text = idx
	}

	c.model = m
	c.generation++
	c.cache.Purge()
}

func (c *Controller) filterView(criteria filter.Criteria) View {
	var opts []filter.Option
	if c.text != nil {
		opts = append(opts, filter.WithTextMatcher(c.text))
	}
	sg := filter.Apply(c.model.Nodes(), c.model.Edges(), criteria, opts...)
	return c.newView(ModeFilter, "", sg)
}

func (c *Controller) newView(mode Mode, focus string, sg *graph.Subgraph) View {
	return View{
		Mode:       mode,
		Focus:      focus,
		Criteria:   c.criteria,
		Graph:      sg,
		Legend:     viz.ComputeLegend(sg, c.model.Stats()),
		Generation: c.generation,
	}
}

// setView records v as current and notifies subscribers. Callers hold mu.
func (c *Controller) setView(v View) View {
	c.view = v
	c.publish(v)
	return v
}

// ApplyFilters replaces the criteria and shows the filtered graph.
func (c *Controller) ApplyFilters(criteria filter.Criteria) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.criteria = criteria
	c.logger.Debug("applying filters",
		"years", fmt.Sprintf("%d-%d", criteria.Years.Min, criteria.Years.Max),
		"citations", criteria.Citations.String(),
		"relation", criteria.Relation)
	return c.setView(c.filterView(criteria))
}

// ApplyFiltersWith builds criteria from the loaded model's stats and shows
// the filtered graph, all under one lock so a concurrent Reload cannot slip
// in between. If build fails the view is left unchanged.
func (c *Controller) ApplyFiltersWith(build func(graph.Stats) (filter.Criteria, error)) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	criteria, err := build(c.model.Stats())
	if err != nil {
		return View{}, err
	}
	c.criteria = criteria
	return c.setView(c.filterView(criteria)), nil
}

// ResetFilters restores the model-derived default criteria.
func (c *Controller) ResetFilters() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.criteria = filter.Defaults(c.model.Stats())
	return c.setView(c.filterView(c.criteria))
}

// ExpandFromPaper shows the one-hop neighborhood of a paper. If id is not a
// known paper the current view is left unchanged and ok is false.
func (c *Controller) ExpandFromPaper(id string) (View, bool) {
	return c.expand(ModeExpandPaper, id, expand.FromPaper)
}

// ExpandFromAuthor shows the collaboration network of an author. If id is
// not a known author the current view is left unchanged and ok is false.
func (c *Controller) ExpandFromAuthor(id string) (View, bool) {
	return c.expand(ModeExpandAuthor, id, expand.FromAuthor)
}

func (c *Controller) expand(mode Mode, id string, fn func(*graph.Model, string) (*graph.Subgraph, bool)) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sg, ok := fn(c.model, id)
	if !ok {
		return View{}, false
	}
	return c.setView(c.newView(mode, id, sg)), true
}

// Search returns the ranked matches for query in the whole model. The
// caller owns the returned slice.
// Results are memoized per model generation, so reloads never serve stale
// matches. Search does not change the current view.
func (c *Controller) Search(query string, scope search.Scope) []graph.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := searchKey{generation: c.generation, scope: scope, query: query}
	if hit, ok := c.cache.Get(key); ok {
		return slices.Clone(hit)
	}
	results := search.Search(c.model.Nodes(), query, scope)
	c.cache.Add(key, results)
	return slices.Clone(results)
}

// Current returns the view currently shown.
func (c *Controller) Current() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// Criteria returns the active filter criteria.
func (c *Controller) Criteria() filter.Criteria {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.criteria
}

// Model returns the loaded model. Models are immutable, so the caller may
// keep using it after a reload.
func (c *Controller) Model() *graph.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Lookup finds a node by id in the loaded model.
func (c *Controller) Lookup(id string) (graph.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model.Lookup(id)
}

// Reload swaps in a freshly loaded model and recomputes the view.
//
// Criteria left at their defaults follow the new model's ranges; custom
// criteria are kept. An expansion whose focus still exists is redone,
// otherwise the view falls back to the filtered graph.
func (c *Controller) Reload(m *graph.Model) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasDefault := c.criteria == filter.Defaults(c.model.Stats())
	prev := c.view

	c.install(m)
	if wasDefault {
		c.criteria = filter.Defaults(m.Stats())
	}

	c.logger.Info("model reloaded",
		"generation", c.generation,
		"papers", m.Stats().Papers,
		"authors", m.Stats().Authors)

	switch prev.Mode {
	case ModeExpandPaper:
		if sg, ok := expand.FromPaper(m, prev.Focus); ok {
			return c.setView(c.newView(ModeExpandPaper, prev.Focus, sg))
		}
	case ModeExpandAuthor:
		if sg, ok := expand.FromAuthor(m, prev.Focus); ok {
			return c.setView(c.newView(ModeExpandAuthor, prev.Focus, sg))
		}
	}
	return c.setView(c.filterView(c.criteria))
}

// Close releases the text index and ends every subscription.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subMu.Unlock()

	if c.text == nil {
		return nil
	}
	err := c.text.Close()
	c.text = nil
	return err
}

// Package sheet holds an editable in-memory sheet and the bookkeeping for
// its formula cells: cached results, invalidation on edits and concurrent
// recalculation. Evaluation is delegated to the formula engine and always
// runs against a private copy of the grid.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fuabioo/kontab/internal/cache"
	"github.com/fuabioo/kontab/internal/cell"
	"github.com/fuabioo/kontab/internal/formula"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRows      = 100
	DefaultCols      = 26
	DefaultCacheSize = 4096
	DefaultWorkers   = 4
)

// ErrOutOfBounds is returned for addresses beyond the supported sheet size
var ErrOutOfBounds = errors.New("address out of bounds")

// Store is a sheet plus its formula bookkeeping. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	data     cell.Data
	formulas map[cell.Address]*FormulaCell
	version  uint64

	engine  *formula.Engine
	results *cache.LRU[cell.Address, cell.Value]
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store
type Option func(*storeConfig)

type storeConfig struct {
	engine     *formula.Engine
	cacheSize  int
	workers    int
	logger     *slog.Logger
	rows, cols int
}

// WithEngine sets the formula engine
func WithEngine(e *formula.Engine) Option {
	return func(c *storeConfig) { c.engine = e }
}

// WithCacheSize bounds the number of cached formula results
func WithCacheSize(n int) Option {
	return func(c *storeConfig) { c.cacheSize = n }
}

// WithWorkers bounds recalculation concurrency
func WithWorkers(n int) Option {
	return func(c *storeConfig) { c.workers = n }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *storeConfig) { c.logger = l }
}

// WithDimensions sets the initial grid size of a new sheet
func WithDimensions(rows, cols int) Option {
	return func(c *storeConfig) { c.rows, c.cols = rows, cols }
}

func buildConfig(opts []Option) storeConfig {
	c := storeConfig{
		cacheSize: DefaultCacheSize,
		workers:   DefaultWorkers,
		rows:      DefaultRows,
		cols:      DefaultCols,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.engine == nil {
		c.engine = formula.New()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.workers < 1 {
		c.workers = 1
	}
	return c
}

// New creates an empty sheet, 100x26 unless WithDimensions says otherwise
func New(opts ...Option) *Store {
	c := buildConfig(opts)
	return newStore(cell.NewData(c.rows, c.cols), c)
}

// NewFromData creates a sheet over a copy of d and registers every formula in it
func NewFromData(d cell.Data, opts ...Option) *Store {
	c := buildConfig(opts)
	s := newStore(d.Clone(), c)
	for row, cols := range s.data {
		for col, v := range cols {
			if text, ok := v.Text(); ok && formula.IsFormula(v) {
				a := cell.Address{Row: row, Col: col}
				s.formulas[a] = newRecord(a, text)
			}
		}
	}
	return s
}

func newStore(d cell.Data, c storeConfig) *Store {
	return &Store{
		data:     d,
		formulas: make(map[cell.Address]*FormulaCell),
		engine:   c.engine,
		results:  cache.New[cell.Address, cell.Value](c.cacheSize),
		workers:  c.workers,
		logger:   c.logger,
		now:      time.Now,
	}
}

func newRecord(a cell.Address, text string) *FormulaCell {
	return &FormulaCell{
		ID:           newID(),
		Address:      a,
		Formula:      text,
		Dependencies: formula.Dependencies(text),
	}
}

// Set writes a raw value. Writing a formula creates or replaces its record;
// writing anything else removes it. Cached results that read a are dropped.
func (s *Store) Set(a cell.Address, v cell.Value) error {
	if a.Row < 0 || a.Col < 0 || a.Row >= cell.MaxRows || a.Col >= cell.MaxColumns {
		return fmt.Errorf("%w: row %d col %d", ErrOutOfBounds, a.Row, a.Col)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Set(a, v)
	s.version++

	if text, ok := v.Text(); ok && formula.IsFormula(v) {
		s.formulas[a] = newRecord(a, text)
	} else {
		delete(s.formulas, a)
	}

	s.results.Delete(a)
	dropped := s.results.DeleteFunc(func(k cell.Address, _ cell.Value) bool {
		rec, ok := s.formulas[k]
		return ok && formula.DependsOn(rec.Formula, a)
	})
	for _, rec := range s.formulas {
		if rec.Address != a && !rec.LastCalculated.IsZero() && formula.DependsOn(rec.Formula, a) {
			rec.LastCalculated = time.Time{}
		}
	}
	if dropped > 0 {
		s.logger.Debug("invalidated dependents", "cell", a.String(), "count", dropped)
	}
	return nil
}

// SetA1 is Set with an A1-style reference and editor-style input
func (s *Store) SetA1(ref string, raw string) error {
	a, err := cell.ParseAddress(ref)
	if err != nil {
		return err
	}
	return s.Set(a, cell.Parse(raw))
}

// Get returns the raw content of a
func (s *Store) Get(a cell.Address) cell.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.At(a)
}

// Value returns the computed content of a. Formula results are cached until
// a cell they read is edited.
func (s *Store) Value(ctx context.Context, a cell.Address) (cell.Value, error) {
	if err := ctx.Err(); err != nil {
		return cell.Value{}, err
	}

	s.mu.RLock()
	raw := s.data.At(a)
	if !formula.IsFormula(raw) {
		s.mu.RUnlock()
		return raw, nil
	}
	if v, ok := s.results.Get(a); ok {
		s.mu.RUnlock()
		return v, nil
	}
	snapshot := s.data.Clone()
	version := s.version
	s.mu.RUnlock()

	v := s.engine.Evaluate(raw, snapshot)
	s.store(version, map[cell.Address]cell.Value{a: v})
	return v, nil
}

// store caches results computed against the given version. Results from a
// snapshot that has since been edited are discarded.
func (s *Store) store(version uint64, values map[cell.Address]cell.Value) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return false
	}
	now := s.now()
	for a, v := range values {
		s.results.Set(a, v)
		if rec, ok := s.formulas[a]; ok {
			rec.Value = v
			rec.LastCalculated = now
		}
	}
	return true
}

// Formulas returns copies of the formula records in row-major order
func (s *Store) Formulas() []FormulaCell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formulaList()
}

func (s *Store) formulaList() []FormulaCell {
	out := make([]FormulaCell, 0, len(s.formulas))
	for _, rec := range s.formulas {
		c := *rec
		c.Dependencies = append([]cell.Address(nil), rec.Dependencies...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address.Row != out[j].Address.Row {
			return out[i].Address.Row < out[j].Address.Row
		}
		return out[i].Address.Col < out[j].Address.Col
	})
	return out
}

// Recalculate evaluates every formula against one snapshot, using up to the
// configured number of workers, and returns the updated records.
func (s *Store) Recalculate(ctx context.Context) ([]FormulaCell, error) {
	s.mu.RLock()
	snapshot := s.data.Clone()
	version := s.version
	records := s.formulaList()
	s.mu.RUnlock()

	start := s.now()
	values := make([]cell.Value, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values[i] = s.engine.Evaluate(cell.Text(records[i].Formula), snapshot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recalculate: %w", err)
	}

	byAddr := make(map[cell.Address]cell.Value, len(records))
	failed := 0
	for i := range records {
		records[i].Value = values[i]
		records[i].LastCalculated = start
		byAddr[records[i].Address] = values[i]
		if values[i].IsError() {
			failed++
		}
	}

	if !s.store(version, byAddr) {
		s.logger.Debug("sheet changed during recalculation, results not cached")
	}
	s.logger.Debug("recalculated sheet",
		"formulas", len(records),
		"errors", failed,
		"workers", s.workers,
		"elapsed", time.Since(start))
	return records, nil
}

// Snapshot returns a deep copy of the raw grid
func (s *Store) Snapshot() cell.Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Computed recalculates and returns a copy of the grid with every formula
// replaced by its computed value, along with the formula records.
func (s *Store) Computed(ctx context.Context) (cell.Data, []FormulaCell, error) {
	records, err := s.Recalculate(ctx)
	if err != nil {
		return nil, nil, err
	}
	out := s.Snapshot()
	for _, rec := range records {
		out.Set(rec.Address, rec.Value)
	}
	return out, records, nil
}

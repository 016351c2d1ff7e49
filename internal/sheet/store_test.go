package sheet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/fuabioo/kontab/internal/formula"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func a1(ref string) cell.Address {
	return cell.MustParseAddress(ref)
}

func value(t *testing.T, s *Store, ref string) cell.Value {
	t.Helper()
	v, err := s.Value(context.Background(), a1(ref))
	require.NoError(t, err)
	return v
}

func TestNewDefaultDimensions(t *testing.T) {
	s := New()
	rows, cols := s.Snapshot().Bounds()
	assert.Equal(t, DefaultRows, rows)
	assert.Equal(t, DefaultCols, cols)

	rows, cols = New(WithDimensions(3, 2)).Snapshot().Bounds()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
}

func TestSetGrowsGrid(t *testing.T) {
	s := New(WithDimensions(1, 1))
	require.NoError(t, s.SetA1("C5", "7"))

	rows, cols := s.Snapshot().Bounds()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, cell.Number(7), s.Get(a1("C5")))
}

func TestSetRejectsOutOfBounds(t *testing.T) {
	s := New()
	err := s.Set(cell.Address{Row: -1, Col: 0}, cell.Number(1))
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	err = s.Set(cell.Address{Row: 0, Col: cell.MaxColumns}, cell.Number(1))
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	assert.Error(t, s.SetA1("A0", "1"))
}

func TestFormulaRecordLifecycle(t *testing.T) {
	s := New()
	require.NoError(t, s.SetA1("A1", "10"))
	require.NoError(t, s.SetA1("A2", "=a1*2 + A1"))

	recs := s.Formulas()
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, a1("A2"), rec.Address)
	assert.Equal(t, "=a1*2 + A1", rec.Formula)
	assert.Equal(t, []cell.Address{a1("A1")}, rec.Dependencies)
	assert.True(t, rec.LastCalculated.IsZero())

	id, err := uuid.Parse(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	// replacing the formula issues a new record
	require.NoError(t, s.SetA1("A2", "=A1+1"))
	recs = s.Formulas()
	require.Len(t, recs, 1)
	assert.NotEqual(t, rec.ID, recs[0].ID)

	// a literal removes it
	require.NoError(t, s.SetA1("A2", "hello"))
	assert.Empty(t, s.Formulas())
}

func TestValueComputesAndCaches(t *testing.T) {
	s := New()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.SetA1("A1", "10"))
	require.NoError(t, s.SetA1("A2", "20"))
	require.NoError(t, s.SetA1("A3", "=SUM(A1:A2)"))

	assert.Equal(t, cell.Number(30), value(t, s, "A3"))
	assert.Equal(t, cell.Number(10), value(t, s, "A1"))
	assert.Equal(t, cell.Empty(), value(t, s, "Z99"))

	recs := s.Formulas()
	require.Len(t, recs, 1)
	assert.Equal(t, cell.Number(30), recs[0].Value)
	assert.Equal(t, fixed, recs[0].LastCalculated)
	assert.Equal(t, 1, s.results.Len())
}

func TestEditInvalidatesDependents(t *testing.T) {
	s := New()
	require.NoError(t, s.SetA1("A1", "1"))
	require.NoError(t, s.SetA1("A2", "2"))
	require.NoError(t, s.SetA1("A3", "3"))
	require.NoError(t, s.SetA1("B1", "=SUM(A1:A3)"))
	require.NoError(t, s.SetA1("B2", "=A1+A3"))
	require.NoError(t, s.SetA1("B3", "=C1*2"))
	require.NoError(t, s.SetA1("C1", "5"))

	assert.Equal(t, cell.Number(6), value(t, s, "B1"))
	assert.Equal(t, cell.Number(4), value(t, s, "B2"))
	assert.Equal(t, cell.Number(10), value(t, s, "B3"))

	// A2 sits inside B1's range but is not referenced by B2
	require.NoError(t, s.SetA1("A2", "20"))
	_, cached := s.results.Get(a1("B1"))
	assert.False(t, cached, "range dependent must be invalidated")
	_, cached = s.results.Get(a1("B2"))
	assert.True(t, cached, "unrelated formula stays cached")

	assert.Equal(t, cell.Number(24), value(t, s, "B1"))
	assert.Equal(t, cell.Number(4), value(t, s, "B2"))

	require.NoError(t, s.SetA1("C1", "not a number"))
	assert.True(t, value(t, s, "B3").IsError())
}

func TestFailingFormulaIsCellLocal(t *testing.T) {
	s := New()
	require.NoError(t, s.SetA1("A1", "4"))
	require.NoError(t, s.SetA1("B1", "=A1/0"))
	require.NoError(t, s.SetA1("B2", "=A1*2"))

	recs, err := s.Recalculate(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.True(t, recs[0].Value.IsError())
	assert.Contains(t, recs[0].Value.String(), "division by zero")
	assert.Equal(t, cell.Number(8), recs[1].Value)
}

func TestFormulaReferencingFormulaIsError(t *testing.T) {
	s := New()
	require.NoError(t, s.SetA1("A1", "=1+1"))
	require.NoError(t, s.SetA1("A2", "=A1+1"))

	assert.Equal(t, cell.Number(2), value(t, s, "A1"))
	assert.True(t, value(t, s, "A2").IsError())
}

func TestRecalculateUsesEngineOptions(t *testing.T) {
	s := New(WithEngine(formula.New(formula.WithAccountingRate(0.1))))
	require.NoError(t, s.SetA1("A1", "=VAT(200)"))

	recs, err := s.Recalculate(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, cell.Number(20), recs[0].Value)
	assert.False(t, recs[0].LastCalculated.IsZero())
}

func TestRecalculateCanceled(t *testing.T) {
	s := New(WithWorkers(1))
	for i := 1; i <= 50; i++ {
		require.NoError(t, s.SetA1(fmt.Sprintf("A%d", i), fmt.Sprintf("=%d+1", i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Recalculate(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Value(ctx, a1("A1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromDataRegistersFormulas(t *testing.T) {
	d, err := cell.FromRows([][]any{
		{1, 2, "=A1+B1"},
		{"label", nil, "=SUM(A1:B1)"},
	})
	require.NoError(t, err)

	s := NewFromData(d)
	assert.Len(t, s.Formulas(), 2)

	computed, recs, err := s.Computed(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, cell.Number(3), computed.At(a1("C1")))
	assert.Equal(t, cell.Number(3), computed.At(a1("C2")))
	assert.Equal(t, cell.Text("label"), computed.At(a1("A2")))

	// the source grid is not aliased
	require.NoError(t, s.SetA1("A1", "100"))
	assert.Equal(t, cell.Number(1), d.At(a1("A1")))
}

func TestSnapshotIsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.SetA1("A1", "1"))

	snap := s.Snapshot()
	snap.Set(a1("A1"), cell.Number(99))
	assert.Equal(t, cell.Number(1), s.Get(a1("A1")))
}

func TestConcurrentEditsAndReads(t *testing.T) {
	s := New(WithCacheSize(8), WithWorkers(4))
	require.NoError(t, s.SetA1("B1", "=SUM(A1:A20)"))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= 20; i++ {
				_ = s.SetA1(fmt.Sprintf("A%d", i), fmt.Sprint(w+i))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, _ = s.Value(context.Background(), a1("B1"))
				_, _ = s.Recalculate(context.Background())
			}
		}()
	}
	wg.Wait()

	// once edits settle the cached value matches a fresh evaluation
	want := formula.Evaluate(s.Get(a1("B1")), s.Snapshot())
	assert.Equal(t, want, value(t, s, "B1"))
}

func TestReport(t *testing.T) {
	s := New()
	require.NoError(t, s.SetA1("A1", "2"))
	require.NoError(t, s.SetA1("B1", "=A1*3"))
	require.NoError(t, s.SetA1("B2", "=A1/0"))

	recs, err := s.Recalculate(context.Background())
	require.NoError(t, err)

	r := NewReport("Ledger", recs)
	assert.Equal(t, 1, r.Errors)
	table := r.Table()
	require.Len(t, table, 3)
	assert.Equal(t, []string{"B1", "=A1*3", "6", "A1"}, table[1])

	assert.NotNil(t, NewReport("", nil).Formulas)
}

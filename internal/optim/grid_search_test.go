package optim

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
)

func quadratic(_ context.Context, p map[string]float64) (float64, error) {
	return (p["x"]-2)*(p["x"]-2) + (p["y"]+1)*(p["y"]+1), nil
}

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{0, 1, 2, 3}, {-2, -1, 0}})

	result, err := g.Search(context.Background(), quadratic)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if result.Best["x"] != 2 || result.Best["y"] != -1 {
		t.Errorf("expected best (2, -1), got %v", result.Best)
	}
	if result.Value != 0 {
		t.Errorf("expected value 0, got %f", result.Value)
	}
	if result.Evaluated != 12 {
		t.Errorf("expected 12 evaluations, got %d", result.Evaluated)
	}
}

func TestGridSearchPointOrder(t *testing.T) {
	g := NewGridSearch([]string{"a", "b", "c"}, [][]float64{{1, 2}, {10, 20, 30}, {100, 200}})

	if g.Size() != 12 {
		t.Fatalf("expected size 12, got %d", g.Size())
	}

	idx := 0
	for _, a := range []float64{1, 2} {
		for _, b := range []float64{10, 20, 30} {
			for _, c := range []float64{100, 200} {
				p := g.Point(idx)
				if p["a"] != a || p["b"] != b || p["c"] != c {
					t.Errorf("point %d = %v, want (%v, %v, %v)", idx, p, a, b, c)
				}
				idx++
			}
		}
	}
}

func TestGridSearchTieKeepsFirst(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{-1, 1, 0}})

	result, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return p["x"] * p["x"], nil
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Best["x"] != 0 {
		t.Errorf("expected x=0, got %v", result.Best)
	}

	result, err = g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return math.Abs(p["x"]), nil
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Best["x"] != 0 {
		t.Errorf("expected x=0, got %v", result.Best)
	}

	tie := NewGridSearch([]string{"x"}, [][]float64{{-1, 1}})
	result, err = tie.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return p["x"] * p["x"], nil
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Best["x"] != -1 {
		t.Errorf("expected first tied point x=-1, got %v", result.Best)
	}
}

func TestGridSearchSkipsNaN(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{0, 1, 2}})

	result, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 0 {
			return math.NaN(), nil
		}
		return p["x"], nil
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Best["x"] != 1 {
		t.Errorf("expected x=1, got %v", result.Best)
	}

	_, err = g.Search(context.Background(), func(_ context.Context, _ map[string]float64) (float64, error) {
		return math.Inf(1), nil
	})
	if !errors.Is(err, ErrNoImprovement) {
		t.Errorf("expected ErrNoImprovement, got %v", err)
	}
}

func TestGridSearchParallelMatchesSequential(t *testing.T) {
	axis := []float64{-3, -2, -1, 0, 1, 2, 3}
	objective := func(_ context.Context, p map[string]float64) (float64, error) {
		// Several exact ties at value 1.
		return math.Abs(math.Abs(p["x"])-1) + math.Abs(math.Abs(p["y"])-1), nil
	}

	seq, err := NewGridSearch([]string{"x", "y"}, [][]float64{axis, axis}).Search(context.Background(), objective)
	if err != nil {
		t.Fatalf("sequential search failed: %v", err)
	}

	for _, workers := range []int{2, 4, 16} {
		par, err := NewGridSearch([]string{"x", "y"}, [][]float64{axis, axis}).
			WithWorkers(workers).
			Search(context.Background(), objective)
		if err != nil {
			t.Fatalf("parallel search (%d workers) failed: %v", workers, err)
		}
		if par.Best["x"] != seq.Best["x"] || par.Best["y"] != seq.Best["y"] || par.Value != seq.Value {
			t.Errorf("workers=%d: got %v (%f), want %v (%f)", workers, par.Best, par.Value, seq.Best, seq.Value)
		}
	}
}

func TestGridSearchObserver(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)

	g := NewGridSearch([]string{"x", "y"}, [][]float64{{0, 1, 2, 3}, {-2, -1, 0}}).
		WithWorkers(3).
		OnEvaluation(func(e Evaluation) {
			mu.Lock()
			defer mu.Unlock()
			seen[e.Index] = true
		})

	if _, err := g.Search(context.Background(), quadratic); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(seen) != g.Size() {
		t.Errorf("expected %d observed points, got %d", g.Size(), len(seen))
	}
}

func TestGridSearchObjectiveError(t *testing.T) {
	boom := errors.New("boom")
	for _, workers := range []int{1, 4} {
		g := NewGridSearch([]string{"x"}, [][]float64{{0, 1, 2}}).WithWorkers(workers)
		_, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
			if p["x"] == 1 {
				return 0, boom
			}
			return p["x"], nil
		})
		if !errors.Is(err, boom) {
			t.Errorf("workers=%d: expected wrapped objective error, got %v", workers, err)
		}
	}
}

func TestGridSearchInvalidGrid(t *testing.T) {
	_, err := NewGridSearch([]string{"x", "y"}, [][]float64{{1}}).Search(context.Background(), quadratic)
	if !errors.Is(err, ErrAxisMismatch) {
		t.Errorf("expected ErrAxisMismatch, got %v", err)
	}

	_, err = NewGridSearch([]string{"x", "y"}, [][]float64{{1}, {}}).Search(context.Background(), quadratic)
	if !errors.Is(err, ErrEmptyAxis) {
		t.Errorf("expected ErrEmptyAxis, got %v", err)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := NewGridSearch([]string{"x"}, [][]float64{{0, 1, 2}}).
			WithWorkers(workers).
			Search(ctx, func(_ context.Context, p map[string]float64) (float64, error) { return p["x"], nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: expected context.Canceled, got %v", workers, err)
		}
	}
}

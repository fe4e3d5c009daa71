// Package optim calibrates run parameters by exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrNoFeasiblePoint = errors.New("optim: no grid point could be evaluated")

// Objective scores one parameter point; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Evaluation is one visited grid point. Err is set when the objective
// failed there, e.g. because the flow rule left its domain.
type Evaluation struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("optim: no parameters")
	}
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point in order and returns the best one with
// its score. Failed points are skipped; only ctx cancellation stops early.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (map[string]float64, float64, []Evaluation, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	evals := make([]Evaluation, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), obj, &best, &bestParams, &evals)
	if err != nil {
		return bestParams, best, evals, err
	}
	if bestParams == nil {
		return nil, best, evals, ErrNoFeasiblePoint
	}
	return bestParams, best, evals, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	obj Objective,
	best *float64,
	bestParams *map[string]float64,
	evals *[]Evaluation,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		score, err := obj(ctx, current)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		*evals = append(*evals, Evaluation{Params: current, Score: score, Err: err})
		if err != nil || math.IsNaN(score) {
			return nil
		}

		if score < *best {
			*best = score
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, obj, best, bestParams, evals); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

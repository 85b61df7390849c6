// Command postsolvedemo hand-applies a single presolve reduction to a
// tiny LP, solves the reduced problem with an external solver, and
// replays the reduction's inverse to recover a solution for the
// original problem.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bartolsthoorn/gohighs/highs"

	"highspostsolve/src/postsolve"
)

// buildReducedLP sets up min x s.t. x >= 1, 0 <= x <= 2 — the result of
// fixing y=0 in min x+y s.t. x+y >= 1, 0 <= x,y <= 2.
func buildReducedLP() *highs.Model {
	m := &highs.Model{
		ColCosts: []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{2},
	}
	m.AddGeRow([]float64{1}, 1)
	return m
}

func main() {
	var feastol float64
	var verbose bool
	flag.Float64Var(&feastol, "feastol", 1e-7, "feasibility tolerance used by the duplicate-column split inverse")
	flag.BoolVar(&verbose, "verbose", false, "print the reduced solve's raw solution before postsolve")
	flag.Parse()

	stack := postsolve.NewStack()
	stack.InitializeIndexMaps(1, 2)

	// Fix y (original column 1) at its lower bound 0; its only
	// coefficient is 1 on the row being kept (reduced row 0).
	if err := stack.FixedColAtLower(1, 0, 1, []postsolve.IndexValue{{Index: 0, Value: 1}}); err != nil {
		fmt.Fprintf(os.Stderr, "emitting FixedCol reduction: %v\n", err)
		os.Exit(1)
	}
	if err := stack.CompressIndexMaps([]int{0}, []int{0, postsolve.Removed}); err != nil {
		fmt.Fprintf(os.Stderr, "compressing index maps: %v\n", err)
		os.Exit(1)
	}

	reduced := buildReducedLP()
	result, err := reduced.Solve(highs.WithPresolve("off"), highs.WithOutput(false))
	if err != nil {
		fmt.Fprintf(os.Stderr, "solving reduced LP: %v\n", err)
		os.Exit(1)
	}
	if !result.IsOptimal() {
		fmt.Fprintf(os.Stderr, "reduced LP did not solve to optimality: %v\n", result.Status)
		os.Exit(1)
	}

	if verbose {
		fmt.Printf("reduced solve: x=%v, row dual=%v\n", result.ColValues, result.RowDuals)
	}

	sol := &postsolve.Solution{
		ColValue: append([]float64(nil), result.ColValues...),
		RowValue: append([]float64(nil), result.RowValues...),
	}
	var basis *postsolve.Basis
	if len(result.ColDuals) == len(result.ColValues) {
		sol.ColDual = append([]float64(nil), result.ColDuals...)
		sol.RowDual = append([]float64(nil), result.RowDuals...)
		basis = &postsolve.Basis{
			ColStatus: toBasisStatus(result.ColBasis),
			RowStatus: toBasisStatus(result.RowBasis),
		}
	}

	if err := stack.Undo(sol, basis, feastol); err != nil {
		fmt.Fprintf(os.Stderr, "postsolve undo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("original-problem solution:\n%v", sol)
	if basis != nil {
		fmt.Printf("original-problem basis:\n%v", basis)
	}
}

func toBasisStatus(hb []highs.BasisStatus) []postsolve.BasisStatus {
	out := make([]postsolve.BasisStatus, len(hb))
	for i, s := range hb {
		switch s {
		case highs.BasisStatusLower:
			out[i] = postsolve.AtLower
		case highs.BasisStatusUpper:
			out[i] = postsolve.AtUpper
		case highs.BasisStatusZero:
			out[i] = postsolve.Zero
		case highs.BasisStatusBasic:
			out[i] = postsolve.Basic
		case highs.BasisStatusNonbasic:
			out[i] = postsolve.Nonbasic
		default:
			out[i] = postsolve.Nonbasic
		}
	}
	return out
}

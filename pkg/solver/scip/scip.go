// Package scip documents where a real SCIP/AMPL binding would plug into the
// solver.Solver contract. It ships no solver; Solve always fails with
// ErrUnavailable.
package scip

import (
	"context"
	"errors"

	"github.com/fieldopt/fieldopt-server/pkg/solver"
)

// ErrUnavailable is returned by every call; this package is a placeholder
// for a future external SCIP/AMPL integration, not a working backend.
var ErrUnavailable = errors.New("scip: solver backend not available in this build")

// Backend implements solver.Solver but never solves anything.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (*Backend) Solve(ctx context.Context, inst *solver.Instance, lim solver.Limits) (solver.Outcome, error) {
	return solver.Outcome{}, ErrUnavailable
}

// Package solver defines the solver-agnostic MILP contract spec §6.2
// describes: the sets/parameters/decision variables a conforming backend
// must honour, independent of any particular solver's source form.
package solver

import (
	"context"
	"time"
)

// VarKey identifies one (field, group, index) cell, the unit the x and y
// decision variables are indexed by.
type VarKey struct {
	Field string
	Group string
	T     int
}

// AATKey identifies a (field, group) Already-Assigned-Timeslot bucket.
type AATKey struct {
	Field string
	Group string
}

// FieldSpec is set F's per-member data: size[f] and UT[f].
type FieldSpec struct {
	ID                    string
	Size                  int
	UnavailableStartTimes []int // UT[f]
}

// GroupSpec is set G's per-member data: d[g], n_min[g], n_max[g],
// size_req[g], prio[g], p_st1[g], p_st2[g], p_early_starts[g], AT[g], PT[g],
// PF[g].
type GroupSpec struct {
	ID                    string
	Duration              int
	MinNumberOfActivities int
	MaxNumberOfActivities int
	SizeRequired          int
	Priority              int
	PST1                  int
	PST2                  int
	PEarlyStarts          int
	AT                    []int
	PT                    []int
	PF                    []string
}

// Instance is the full MILP instance: sets, parameters, and the pinned
// variables from the AAT builder (spec §4.6, §6.2(h)).
type Instance struct {
	Fields []FieldSpec
	Groups []GroupSpec

	// T is the set of all active indices, D the day numbers 1..|days|, DT[d]
	// the per-day indices, ST the first index of each day.
	T  []int
	D  []int
	DT map[int][]int
	ST []int

	IncompatibleSameTime [][2]string // INCOMPATIBLE_GROUPS_SAME_TIME
	IncompatibleSameDay  [][2]string // INCOMPATIBLE_GROUPS_SAME_DAY

	AAT map[AATKey][]int // already-assigned timeslots, informational

	FixedX map[VarKey]bool // pinned x[f,g,t] = 1
	FixedY map[VarKey]bool // pinned y[f,g,t] = 1
}

// Limits bounds one solve iteration (spec §4.7).
type Limits struct {
	TimeLimit    time.Duration
	GapLimit     float64 // relative, ratio not percent (e.g. 0.05 = 5%)
	AbsGapLimit  float64
	PreSettings  int
}

// Status is the solver's raw outcome (spec §4.7 step 2: "solve_result ∈
// {solved, infeasible, limit, failure, …}").
type Status string

const (
	StatusSolved     Status = "solved"
	StatusInfeasible Status = "infeasible"
	StatusLimit      Status = "limit"
	StatusFailure    Status = "failure"
)

// Outcome is what one Solve call returns.
type Outcome struct {
	Status               Status
	Message              string // solver log text; gap is extracted from here, see ParseGap
	PreferenceScore       *float64
	X                     map[VarKey]bool
	Y                     map[VarKey]bool
	MinActivityShortfall map[string]float64 // min_activity_shortfall[g]
}

// Solver is the solver-agnostic contract (spec §6.2). One call solves (or
// re-solves) an Instance under Limits and returns a blocking Outcome; the
// coordinator treats it as an opaque call (spec §5).
type Solver interface {
	Solve(ctx context.Context, inst *Instance, lim Limits) (Outcome, error)
}
